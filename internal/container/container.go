package container

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/types"
)

type ResolveHook func(key string, duration time.Duration, err error)

type Container struct {
	index     *types.Index
	registry  *Registry
	logger    *slog.Logger
	onResolve []ResolveHook
}

type Config struct {
	Index     *types.Index
	Logger    *slog.Logger
	OnResolve []ResolveHook
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	index := cfg.Index
	if index == nil {
		index = types.NewIndex()
	}

	return &Container{
		index:     index,
		registry:  NewRegistry(),
		logger:    logger,
		onResolve: cfg.OnResolve,
	}
}

func (c *Container) Index() *types.Index {
	return c.index
}

func (c *Container) Register(b *Bean) error {
	if b.Type == nil {
		return errs.Newf(errs.CodeInvalidConfiguration, "bean %q has no type", b.ID)
	}
	if b.ID == "" {
		b.ID = b.Type.String()
		if len(b.Qualifiers) > 0 {
			b.ID += fmt.Sprintf("%v", b.Qualifiers)
		}
	}
	if c.registry.Has(b.ID) {
		return errs.Newf(errs.CodeDuplicateService, "service already registered: %s", b.ID).WithService(b.ID)
	}
	if b.Provider == nil {
		return errs.Newf(errs.CodeInvalidConfiguration, "no provider for %s", b.ID).WithService(b.ID)
	}

	beanTypes, err := c.beanTypes(b.Type)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", b.ID, err)
	}
	b.beanTypes = beanTypes
	b.Qualifiers = normalizeQualifiers(b.Qualifiers)

	c.registry.Register(b)
	c.logger.Debug("bean registered", "bean", b.ID, "scope", b.Scope.String())
	return nil
}

func (c *Container) beanTypes(t types.Type) ([]string, error) {
	switch t.Kind() {
	case types.KindClass, types.KindParameterized:
		return c.index.Closure(t.Name())
	case types.KindPrimitive, types.KindArray:
		return []string{t.Name(), types.ObjectName}, nil
	default:
		return nil, errs.Internal("type %s cannot be a bean type", t)
	}
}

func (c *Container) Has(id string) bool {
	return c.registry.Has(id)
}

func (c *Container) Get(id string) (*Bean, bool) {
	return c.registry.Get(id)
}

func (c *Container) Keys() []string {
	return c.registry.Keys()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

// ResolveBeans returns every bean that has t among its bean types and
// carries all the requested qualifiers. No qualifiers means Default.
func (c *Container) ResolveBeans(t types.Type, qualifiers []string) ([]*Bean, error) {
	switch t.Kind() {
	case types.KindTypeVariable, types.KindWildcard:
		return nil, errs.Internal("cannot look up beans of type %s", t)
	case types.KindVoid:
		return nil, nil
	}

	required := requiredQualifiers(qualifiers)
	var out []*Bean
	for _, b := range c.registry.All() {
		if b.hasType(t.Name()) && b.hasQualifiers(required) {
			out = append(out, b)
		}
	}
	return out, nil
}

// ResolveAmbiguity picks one bean: the only candidate, or the only primary
// candidate.
func (c *Container) ResolveAmbiguity(beans []*Bean) (*Bean, error) {
	if len(beans) == 1 {
		return beans[0], nil
	}

	var primary []*Bean
	for _, b := range beans {
		if b.Primary {
			primary = append(primary, b)
		}
	}
	if len(primary) == 1 {
		return primary[0], nil
	}

	return nil, errs.Newf(errs.CodeAmbiguousDependency, "%d beans match", len(beans)).
		WithCandidates(describeBeans(beans))
}

func (c *Container) Resolve(t types.Type, qualifiers []string) (*Bean, error) {
	beans, err := c.ResolveBeans(t, qualifiers)
	if err != nil {
		return nil, err
	}
	if len(beans) == 0 {
		return nil, errs.Newf(
			errs.CodeUnsatisfiedDependency,
			"unsatisfied dependency for type %s and qualifiers %v", t, requiredQualifiers(qualifiers),
		).WithService(t.String())
	}

	b, err := c.ResolveAmbiguity(beans)
	if err != nil {
		return nil, errs.Newf(
			errs.CodeAmbiguousDependency,
			"ambiguous dependencies for type %s and qualifiers %v", t, requiredQualifiers(qualifiers),
		).WithService(t.String()).WithCandidates(describeBeans(beans))
	}
	return b, nil
}

func describeBeans(beans []*Bean) []string {
	out := make([]string, len(beans))
	for i, b := range beans {
		out[i] = b.String()
	}
	return out
}
