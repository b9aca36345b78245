package needle

import (
	"context"

	"github.com/danpasecinic/needle-invoke/internal/container"
	"github.com/danpasecinic/needle-invoke/internal/scope"
	"github.com/danpasecinic/needle-invoke/types"
)

// Provider creates an instance of a bean.
type Provider[T any] func(ctx context.Context) (T, error)

type ProviderOption func(*providerConfig)

type providerConfig struct {
	id         string
	qualifiers []string
	scope      scope.Scope
	primary    bool
	destroy    container.DestroyFunc
}

// Provide registers a bean of type t whose instances are created by
// provider. t is usually a class from the container's index; every
// superclass and interface of it becomes a bean type too.
func Provide[T any](c *Container, t types.Type, provider Provider[T], opts ...ProviderOption) error {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	b := &container.Bean{
		ID:         cfg.id,
		Type:       t,
		Qualifiers: cfg.qualifiers,
		Scope:      cfg.scope,
		Primary:    cfg.primary,
		Destroy:    cfg.destroy,
		Provider: func(ctx context.Context) (any, error) {
			return provider(ctx)
		},
	}
	return c.internal.Register(b)
}

// ProvideValue registers an existing value as a singleton bean of type t.
func ProvideValue[T any](c *Container, t types.Type, value T, opts ...ProviderOption) error {
	opts = append(opts, WithScope(Singleton))
	return Provide(c, t, func(context.Context) (T, error) {
		return value, nil
	}, opts...)
}

// WithID overrides the bean identifier, which defaults to the type and
// qualifiers.
func WithID(id string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.id = id
	}
}

// WithName qualifies the bean so it can be selected with Named(name).
func WithName(name string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.qualifiers = append(cfg.qualifiers, container.Named(name))
	}
}

func WithQualifiers(qualifiers ...string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.qualifiers = append(cfg.qualifiers, qualifiers...)
	}
}

func WithScope(s Scope) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.scope = s
	}
}

// WithPrimary makes the bean win when several beans match a lookup.
func WithPrimary() ProviderOption {
	return func(cfg *providerConfig) {
		cfg.primary = true
	}
}

// WithDestroy sets the function releasing a dependent instance.
func WithDestroy[T any](destroy func(T) error) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.destroy = func(instance any) error {
			typed, ok := instance.(T)
			if !ok {
				return nil
			}
			return destroy(typed)
		}
	}
}
