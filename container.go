package needle

import (
	"log/slog"

	"github.com/danpasecinic/needle-invoke/internal/container"
	"github.com/danpasecinic/needle-invoke/internal/invoker"
	"github.com/danpasecinic/needle-invoke/types"
)

// Container holds beans and the invokers generated against them.
type Container struct {
	internal  *container.Container
	generator *invoker.Generator
	cache     *invoker.Cache
	config    *containerConfig
}

type containerConfig struct {
	logger     *slog.Logger
	index      *types.Index
	onResolve  []ResolveHook
	onInvoke   []InvokeHook
	onGenerate []GenerateHook
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.index == nil {
		cfg.index = types.NewIndex()
	}

	resolveHooks := make([]container.ResolveHook, len(cfg.onResolve))
	for i, hook := range cfg.onResolve {
		resolveHooks[i] = container.ResolveHook(hook)
	}
	internal := container.New(
		&container.Config{
			Index:     cfg.index,
			Logger:    cfg.logger,
			OnResolve: resolveHooks,
		},
	)

	invokeHooks := make([]invoker.InvokeHook, len(cfg.onInvoke))
	for i, hook := range cfg.onInvoke {
		invokeHooks[i] = invoker.InvokeHook(hook)
	}
	generator := invoker.NewGenerator(
		&invoker.Config{
			Index:    cfg.index,
			Lookup:   &lookupAdapter{container: internal},
			Logger:   cfg.logger,
			OnInvoke: invokeHooks,
		},
	)

	return &Container{
		internal:  internal,
		generator: generator,
		cache:     invoker.NewCache(),
		config:    cfg,
	}
}

func (c *Container) Index() *types.Index {
	return c.internal.Index()
}

func (c *Container) Size() int {
	return c.internal.Size()
}

func (c *Container) Keys() []string {
	return c.internal.Keys()
}

func (c *Container) Has(id string) bool {
	return c.internal.Has(id)
}

// Invoker returns a generated invoker by its canonical name.
func (c *Container) Invoker(name string) (*GeneratedInvoker, bool) {
	return c.cache.Get(name)
}

// Invokers returns the canonical names of every generated invoker, sorted.
func (c *Container) Invokers() []string {
	return c.cache.Names()
}

func (c *Container) generate(info *invoker.Info) (*GeneratedInvoker, error) {
	gen, hit, err := c.cache.GetOrGenerate(info, c.generator.Generate)
	if err != nil {
		return nil, err
	}
	for _, hook := range c.config.onGenerate {
		hook(gen.Name(), hit)
	}
	return gen, nil
}
