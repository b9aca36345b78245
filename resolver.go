package needle

import (
	"context"

	"github.com/danpasecinic/needle-invoke/internal/container"
	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/invoker"
	"github.com/danpasecinic/needle-invoke/internal/reflect"
	"github.com/danpasecinic/needle-invoke/types"
)

type lookupAdapter struct {
	container *container.Container
}

func (l *lookupAdapter) Resolve(t types.Type, qualifiers []string) (invoker.Dependency, error) {
	b, err := l.container.Resolve(t, qualifiers)
	if err != nil {
		return nil, err
	}
	return &beanDependency{container: l.container, bean: b}, nil
}

type beanDependency struct {
	container *container.Container
	bean      *container.Bean
}

func (d *beanDependency) Handle(ctx context.Context) (invoker.DependencyHandle, error) {
	return d.container.Instance(ctx, d.bean)
}

func (d *beanDependency) String() string {
	return d.bean.String()
}

// Handle is an instance obtained from the container. Release must be
// called once the instance is no longer used; it is a no-op for shared
// scopes.
type Handle = container.InstanceHandle

// Resolve looks up the single bean of type t matching qualifiers and
// returns its instance as T.
func Resolve[T any](ctx context.Context, c *Container, t types.Type, qualifiers ...string) (T, *Handle, error) {
	var zero T

	b, err := c.internal.Resolve(t, qualifiers)
	if err != nil {
		return zero, nil, err
	}
	h, err := c.internal.Instance(ctx, b)
	if err != nil {
		return zero, nil, err
	}

	typed, ok := h.Get().(T)
	if !ok {
		_ = h.Release()
		return zero, nil, errs.Newf(
			errs.CodeInvalidConfiguration, "bean %s does not hold a %s", b.ID, reflect.TypeName[T](),
		).WithService(b.ID)
	}
	return typed, h, nil
}

func MustResolve[T any](ctx context.Context, c *Container, t types.Type, qualifiers ...string) (T, *Handle) {
	v, h, err := Resolve[T](ctx, c, t, qualifiers...)
	if err != nil {
		panic(err)
	}
	return v, h
}

// Named returns the qualifier selecting beans registered with WithName.
func Named(name string) string {
	return container.Named(name)
}

const (
	QualifierDefault = container.QualifierDefault
	QualifierAny     = container.QualifierAny
)
