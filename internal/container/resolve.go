package container

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/scope"
)

// InstanceHandle is an instance obtained from a bean. Only handles of
// dependent beans have to be released.
type InstanceHandle struct {
	bean     *Bean
	instance any
	released atomic.Bool
}

func (h *InstanceHandle) Get() any {
	return h.instance
}

func (h *InstanceHandle) Releasable() bool {
	return !h.bean.Scope.Shared()
}

// Release destroys a dependent instance. It runs at most once and is a
// no-op for shared scopes.
func (h *InstanceHandle) Release() error {
	if !h.Releasable() || !h.released.CompareAndSwap(false, true) {
		return nil
	}
	if h.bean.Destroy == nil {
		return nil
	}
	return h.bean.Destroy(h.instance)
}

func (c *Container) Instance(ctx context.Context, b *Bean) (*InstanceHandle, error) {
	start := time.Now()
	instance, err := c.resolveWithScope(ctx, b)
	c.callResolveHooks(b.ID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &InstanceHandle{bean: b, instance: instance}, nil
}

func (c *Container) callResolveHooks(key string, duration time.Duration, err error) {
	for _, hook := range c.onResolve {
		hook(key, duration, err)
	}
}

func (c *Container) resolveWithScope(ctx context.Context, b *Bean) (any, error) {
	switch b.Scope {
	case scope.Singleton:
		return c.resolveSingleton(ctx, b)
	case scope.Dependent:
		return c.create(ctx, b)
	case scope.Request:
		return c.resolveRequest(ctx, b)
	default:
		return c.resolveSingleton(ctx, b)
	}
}

func (c *Container) resolveSingleton(ctx context.Context, b *Bean) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.instantiated {
		return b.instance, nil
	}

	instance, err := c.create(ctx, b)
	if err != nil {
		return nil, err
	}

	b.instance = instance
	b.instantiated = true
	return instance, nil
}

func (c *Container) create(ctx context.Context, b *Bean) (any, error) {
	instance, err := b.Provider(ctx)
	if err != nil {
		return nil, errs.New(errs.CodeProviderFailed, "provider failed for "+b.ID, err).WithService(b.ID)
	}
	c.logger.Debug("bean instance created", "bean", b.ID, "scope", b.Scope.String())
	return instance, nil
}

type requestScopeKey struct{}

type RequestScope struct {
	mu        sync.Mutex
	instances map[string]any
}

func NewRequestScope() *RequestScope {
	return &RequestScope{
		instances: make(map[string]any),
	}
}

func (rs *RequestScope) get(key string) (any, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	instance, ok := rs.instances[key]
	return instance, ok
}

func (rs *RequestScope) setIfAbsent(key string, instance any) any {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if existing, ok := rs.instances[key]; ok {
		return existing
	}
	rs.instances[key] = instance
	return instance
}

func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestScopeKey{}, NewRequestScope())
}

func getRequestScope(ctx context.Context) *RequestScope {
	if rs, ok := ctx.Value(requestScopeKey{}).(*RequestScope); ok {
		return rs
	}
	return nil
}

func (c *Container) resolveRequest(ctx context.Context, b *Bean) (any, error) {
	rs := getRequestScope(ctx)
	if rs == nil {
		return nil, errs.Newf(
			errs.CodeScopeNotFound,
			"request scope not found in context for %s; use WithRequestScope(ctx)", b.ID,
		).WithService(b.ID)
	}

	if instance, ok := rs.get(b.ID); ok {
		return instance, nil
	}

	instance, err := c.create(ctx, b)
	if err != nil {
		return nil, err
	}
	return rs.setIfAbsent(b.ID, instance), nil
}
