package needle

import (
	"context"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/invoker"
	"github.com/danpasecinic/needle-invoke/internal/reflect"
	"github.com/danpasecinic/needle-invoke/types"
)

type (
	// Invoker calls a target method through its configured pipeline.
	Invoker = invoker.Invoker
	// GeneratedInvoker is a built invoker with its canonical name and
	// identity. It is safe for concurrent use.
	GeneratedInvoker = invoker.Generated
	// InvokerInfo is the frozen configuration of an invoker.
	InvokerInfo = invoker.Info
	// Cleanup registers a release action from a transformer. The action
	// runs once the invocation finishes.
	Cleanup = invoker.Cleanup
	// Transformer is implemented by stateful return value transformers.
	Transformer = invoker.ValueTransformer
)

// InvokerBuilder configures an invoker for one target method. Setters never
// fail immediately; the first misuse is reported by Build.
type InvokerBuilder struct {
	container *Container
	builder   *invoker.Builder
	err       error
}

// CreateInvoker starts an invoker for method declared by or inherited into
// beanClass. Both are looked up in the container's class index.
func (c *Container) CreateInvoker(beanClass, method string) *InvokerBuilder {
	b := &InvokerBuilder{container: c}

	class, ok := c.Index().Class(beanClass)
	if !ok {
		b.err = errs.Newf(errs.CodeServiceNotFound, "class %s is not indexed", beanClass).WithService(beanClass)
		return b
	}
	m, err := c.findMethod(class, method)
	if err != nil {
		b.err = err
		return b
	}

	b.builder = invoker.NewBuilder(class, m, c.afterBuilt)
	return b
}

func (c *Container) findMethod(class *types.ClassInfo, name string) (*types.MethodInfo, error) {
	closure, err := c.Index().Closure(class.Name)
	if err != nil {
		return nil, err
	}
	for _, owner := range closure {
		info, ok := c.Index().Class(owner)
		if !ok {
			continue
		}
		if m, ok := info.Method(name); ok {
			return m, nil
		}
	}
	return nil, errs.Newf(errs.CodeServiceNotFound, "method %s not found on %s", name, class.Name).
		WithService(class.Name)
}

func (c *Container) afterBuilt(info *InvokerInfo) error {
	declaring := info.Method.DeclaringClass()
	if declaring == nil {
		return errs.Newf(errs.CodeInvalidConfiguration, "method %s is not indexed", info.Method.Name).
			WithService(info.String())
	}
	closure, err := c.Index().Closure(info.BeanClass.Name)
	if err != nil {
		return err
	}
	for _, name := range closure {
		if name == declaring.Name {
			c.config.logger.Debug("invoker configured", "method", info.String(), "identity", info.Identity())
			return nil
		}
	}
	return errs.Newf(
		errs.CodeInvalidConfiguration, "method %s is declared on %s, not on a type of %s",
		info.Method.Name, declaring.Name, info.BeanClass.Name,
	).WithService(info.String())
}

func (b *InvokerBuilder) apply(fn func(*invoker.Builder)) *InvokerBuilder {
	if b.err == nil {
		fn(b.builder)
	}
	return b
}

// WithInstanceLookup obtains the target instance from the container on
// every call; the supplied instance is ignored.
func (b *InvokerBuilder) WithInstanceLookup() *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetInstanceLookup() })
}

// WithArgumentLookup obtains argument position from the container on every
// call; the supplied value is ignored.
func (b *InvokerBuilder) WithArgumentLookup(position int) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetArgumentLookup(position) })
}

func (b *InvokerBuilder) WithInstanceTransformer(owner, method string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetInstanceTransformer(owner, method) })
}

func (b *InvokerBuilder) WithArgumentTransformer(position int, owner, method string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetArgumentTransformer(position, owner, method) })
}

func (b *InvokerBuilder) WithReturnValueTransformer(owner, method string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetReturnValueTransformer(owner, method) })
}

// WithReturnValueTransformerType uses an instance of owner, created once per
// generated invoker, as the return value transformer. owner must implement
// Transformer.
func (b *InvokerBuilder) WithReturnValueTransformerType(owner string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetReturnValueTransformerType(owner) })
}

func (b *InvokerBuilder) WithExceptionTransformer(owner, method string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetExceptionTransformer(owner, method) })
}

func (b *InvokerBuilder) WithInvocationWrapper(owner, method string) *InvokerBuilder {
	return b.apply(func(ib *invoker.Builder) { ib.SetInvocationWrapper(owner, method) })
}

// Info freezes the configuration without generating the invoker.
func (b *InvokerBuilder) Info() (*InvokerInfo, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.builder.Build()
}

// Build freezes the configuration and returns the invoker for its identity,
// generating it on first request.
func (b *InvokerBuilder) Build() (*GeneratedInvoker, error) {
	info, err := b.Info()
	if err != nil {
		return nil, err
	}
	return b.container.generate(info)
}

func (b *InvokerBuilder) MustBuild() *GeneratedInvoker {
	inv, err := b.Build()
	if err != nil {
		panic(err)
	}
	return inv
}

// Call invokes inv and asserts its result to T. A nil result yields the
// zero value of T.
func Call[T any](ctx context.Context, inv Invoker, instance any, args ...any) (T, error) {
	var zero T

	result, err := inv.Invoke(ctx, instance, args)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, errs.Newf(errs.CodeInvalidArguments, "invoker result %T is not a %s", result, reflect.TypeName[T]())
	}
	return typed, nil
}
