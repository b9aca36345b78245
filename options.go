package needle

import (
	"log/slog"

	"github.com/danpasecinic/needle-invoke/types"
)

type Option func(*containerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithIndex uses index as the class index instead of a fresh one holding
// only the builtin classes.
func WithIndex(index *types.Index) Option {
	return func(cfg *containerConfig) {
		cfg.index = index
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *containerConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}

func WithInvokeObserver(hook InvokeHook) Option {
	return func(cfg *containerConfig) {
		cfg.onInvoke = append(cfg.onInvoke, hook)
	}
}

func WithGenerateObserver(hook GenerateHook) Option {
	return func(cfg *containerConfig) {
		cfg.onGenerate = append(cfg.onGenerate, hook)
	}
}
