package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/reflect"
	"github.com/danpasecinic/needle-invoke/types"
)

// Invoker calls a target method through its configured pipeline.
type Invoker interface {
	Invoke(ctx context.Context, instance any, args []any) (any, error)
}

// Generated is the runnable invoker for one identity. It holds no
// per-invocation state and may be called concurrently.
type Generated struct {
	info   *Info
	name   string
	invoke func(ctx context.Context, instance any, args []any) (any, error)
}

func (g *Generated) Invoke(ctx context.Context, instance any, args []any) (any, error) {
	return g.invoke(ctx, instance, args)
}

func (g *Generated) Info() *Info {
	return g.info
}

func (g *Generated) Name() string {
	return g.name
}

func (g *Generated) Identity() string {
	return g.info.Identity()
}

func (g *Generated) String() string {
	return g.name
}

type InvokeHook func(name string, duration time.Duration, err error)

type Config struct {
	Index    *types.Index
	Lookup   Lookup
	Logger   *slog.Logger
	OnInvoke []InvokeHook
}

type Generator struct {
	resolver *Resolver
	index    *types.Index
	lookup   Lookup
	logger   *slog.Logger
	onInvoke []InvokeHook
}

func NewGenerator(cfg *Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		resolver: NewResolver(cfg.Index),
		index:    cfg.Index,
		lookup:   cfg.Lookup,
		logger:   logger,
		onInvoke: cfg.OnInvoke,
	}
}

func (g *Generator) Generate(info *Info) (*Generated, error) {
	delegate, err := g.createInvoker(info)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("invoker generated", "name", delegate.name, "method", info.String())

	if info.InvocationWrapper == nil {
		return g.observe(delegate), nil
	}

	wrapper, err := g.createWrapper(info, delegate)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("invoker wrapper generated", "name", wrapper.name, "method", info.String())
	return g.observe(wrapper), nil
}

type source func(ctx context.Context, supplied any, tr *Tracker) (any, error)

type step func(ctx context.Context, value any, tr *Tracker) (any, error)

func (g *Generator) createInvoker(info *Info) (*Generated, error) {
	method := info.Method
	if method.Func == nil {
		return nil, errs.Newf(errs.CodeInvalidConfiguration, "method %s has no implementation", info).
			WithService(info.String())
	}

	var instanceSource source
	var instanceStep step
	if !method.Static {
		var err error
		if instanceSource, err = g.instanceSource(info); err != nil {
			return nil, err
		}
		if instanceStep, err = g.valueStep(info.InstanceTransformer, info.BeanClass.Type(), info); err != nil {
			return nil, err
		}
	}

	arity := method.ParamCount()
	argumentSources := make([]source, arity)
	argumentSteps := make([]step, arity)
	for i, param := range method.Params {
		var err error
		if argumentSources[i], err = g.argumentSource(info, i); err != nil {
			return nil, err
		}
		if argumentSteps[i], err = g.valueStep(info.argumentTransformers[i], param, info); err != nil {
			return nil, err
		}
	}

	returnStep, err := g.returnValueStep(info)
	if err != nil {
		return nil, err
	}
	exceptionStep, err := g.valueStep(info.ExceptionTransformer, types.Error, info)
	if err != nil {
		return nil, err
	}

	target := method.Func
	static := method.Static
	void := method.ReturnType().Kind() == types.KindVoid
	lookups := slices.Clone(info.argumentLookups)
	logger := g.logger
	name := info.String()

	invoke := func(ctx context.Context, instance any, args []any) (any, error) {
		tr := newTracker(logger)
		defer tr.Finish()

		var receiver any
		if !static {
			var err error
			if receiver, err = instanceSource(ctx, instance, tr); err != nil {
				return nil, err
			}
			if instanceStep != nil {
				if receiver, err = instanceStep(ctx, receiver, tr); err != nil {
					return nil, err
				}
			}
			if reflect.IsNil(receiver) {
				return nil, errs.Newf(errs.CodeInvalidArguments, "nil target instance for %s", name).
					WithService(name)
			}
		}

		unfolded := make([]any, arity)
		for i := range arity {
			var given any
			if !lookups[i] {
				if i >= len(args) {
					return nil, errs.Newf(
						errs.CodeInvalidArguments,
						"argument #%d missing for %s, got %d arguments", i, name, len(args),
					).WithService(name)
				}
				given = args[i]
			}
			value, err := argumentSources[i](ctx, given, tr)
			if err != nil {
				return nil, err
			}
			if argumentSteps[i] != nil {
				if value, err = argumentSteps[i](ctx, value, tr); err != nil {
					return nil, err
				}
			}
			unfolded[i] = value
		}

		result, err := target(ctx, receiver, unfolded)
		if err != nil {
			if exceptionStep == nil {
				return nil, err
			}
			return exceptionStep(ctx, err, tr)
		}

		if void {
			result = nil
		}
		if returnStep != nil {
			return returnStep(ctx, result, tr)
		}
		return result, nil
	}

	return &Generated{info: info, name: info.ClassName(), invoke: invoke}, nil
}

func (g *Generator) createWrapper(info *Info, delegate *Generated) (*Generated, error) {
	method, err := g.resolver.FindWrapper(info)
	if err != nil {
		return nil, err
	}
	if method.Func == nil {
		return nil, errs.Newf(errs.CodeInvalidConfiguration, "wrapper %s has no implementation", describe(method)).
			WithService(info.String())
	}

	wrap := method.Func
	void := method.ReturnType().Kind() == types.KindVoid
	invoke := func(ctx context.Context, instance any, args []any) (any, error) {
		result, err := wrap(ctx, nil, []any{instance, args, Invoker(delegate)})
		if err != nil {
			return nil, err
		}
		if void {
			return nil, nil
		}
		return result, nil
	}

	return &Generated{info: info, name: info.WrapperClassName(), invoke: invoke}, nil
}

func (g *Generator) observe(gen *Generated) *Generated {
	if len(g.onInvoke) == 0 {
		return gen
	}

	hooks := g.onInvoke
	next := gen.invoke
	gen.invoke = func(ctx context.Context, instance any, args []any) (any, error) {
		start := time.Now()
		result, err := next(ctx, instance, args)
		for _, hook := range hooks {
			hook(gen.name, time.Since(start), err)
		}
		return result, err
	}
	return gen
}

func (g *Generator) instanceSource(info *Info) (source, error) {
	if !info.instanceLookup {
		return supplied, nil
	}
	dep, err := g.bind(info.BeanClass.Type(), info.BeanClass.Qualifiers, -1, info)
	if err != nil {
		return nil, err
	}
	return lookupSource(dep), nil
}

func (g *Generator) argumentSource(info *Info, position int) (source, error) {
	if !info.argumentLookups[position] {
		return supplied, nil
	}
	dep, err := g.bind(info.Method.Params[position], info.Method.Qualifiers(position), position, info)
	if err != nil {
		return nil, err
	}
	return lookupSource(dep), nil
}

func supplied(_ context.Context, value any, _ *Tracker) (any, error) {
	return value, nil
}

func lookupSource(dep Dependency) source {
	return func(ctx context.Context, _ any, tr *Tracker) (any, error) {
		h, err := dep.Handle(ctx)
		if err != nil {
			return nil, err
		}
		if h.Releasable() {
			tr.AddHandle(h)
		}
		return h.Get(), nil
	}
}

func (g *Generator) bind(t types.Type, qualifiers []string, position int, info *Info) (Dependency, error) {
	what := "target instance"
	if position >= 0 {
		what = fmt.Sprintf("argument #%d", position)
	}
	if g.lookup == nil {
		return nil, errs.Newf(
			errs.CodeInvalidConfiguration,
			"no dependency lookup available when resolving %s of invokable method %s", what, info,
		).WithService(info.String())
	}

	dep, err := g.lookup.Resolve(t, qualifiers)
	if err == nil {
		g.logger.Debug("invoker dependency bound", "method", info.String(), "position", what, "dependency", dep.String())
		return dep, nil
	}

	var e *errs.Error
	if !errors.As(err, &e) {
		return nil, err
	}
	switch e.Code {
	case errs.CodeUnsatisfiedDependency:
		return nil, errs.Newf(
			errs.CodeUnsatisfiedDependency,
			"unsatisfied dependency for type %s and qualifiers %v when resolving %s of invokable method %s",
			t, qualifiers, what, info,
		).WithService(t.String())
	case errs.CodeAmbiguousDependency:
		return nil, errs.Newf(
			errs.CodeAmbiguousDependency,
			"ambiguous dependencies for type %s and qualifiers %v when resolving %s of invokable method %s",
			t, qualifiers, what, info,
		).WithService(t.String()).WithCandidates(e.Candidates)
	default:
		return nil, err
	}
}

func (g *Generator) valueStep(t *Transformer, expected types.Type, info *Info) (step, error) {
	if t == nil {
		return nil, nil
	}
	candidate, err := g.resolver.FindTransformer(t, expected, info)
	if err != nil {
		return nil, err
	}
	return g.transformerStep(candidate, info)
}

func (g *Generator) returnValueStep(info *Info) (step, error) {
	t := info.ReturnValueTransformer
	if t == nil || !t.Stateful() {
		return g.valueStep(t, info.Method.ReturnType(), info)
	}

	owner, ok := g.index.Class(t.Owner)
	if !ok {
		return nil, errs.Internal("transformer class %s is not indexed", t.Owner)
	}
	if owner.New == nil {
		return nil, errs.Newf(errs.CodeInvalidConfiguration, "%s cannot be instantiated", t).
			WithService(info.String())
	}
	instance, err := owner.New()
	if err != nil {
		return nil, errs.New(errs.CodeInvalidConfiguration, fmt.Sprintf("failed to instantiate %s", t), err).
			WithService(info.String())
	}
	transformer, ok := instance.(ValueTransformer)
	if !ok {
		return nil, errs.Newf(errs.CodeInvalidConfiguration, "%s does not implement Transform", t).
			WithService(info.String())
	}

	return func(_ context.Context, value any, _ *Tracker) (any, error) {
		return transformer.Transform(value)
	}, nil
}

func (g *Generator) transformerStep(c *Candidate, info *Info) (step, error) {
	m := c.Method
	if m.Func == nil {
		return nil, errs.Newf(errs.CodeInvalidConfiguration, "transformer %s has no implementation", describe(m)).
			WithService(info.String())
	}

	fn := m.Func
	switch {
	case m.Static && c.UsesCleanup:
		return func(ctx context.Context, value any, tr *Tracker) (any, error) {
			return fn(ctx, nil, []any{value, Cleanup(tr.Add)})
		}, nil
	case m.Static:
		return func(ctx context.Context, value any, _ *Tracker) (any, error) {
			return fn(ctx, nil, []any{value})
		}, nil
	default:
		return func(ctx context.Context, value any, _ *Tracker) (any, error) {
			return fn(ctx, value, nil)
		}, nil
	}
}
