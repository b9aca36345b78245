package needletest

import (
	"context"
	"slices"
	"sync"

	"github.com/danpasecinic/needle-invoke"
	"github.com/danpasecinic/needle-invoke/types"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*needle.Container
	tb TB
}

func New(tb TB, opts ...needle.Option) *TestContainer {
	tb.Helper()

	return &TestContainer{
		Container: needle.New(opts...),
		tb:        tb,
	}
}

// RequireClasses adds class descriptors to the container's index and
// verifies the resulting hierarchy.
func (tc *TestContainer) RequireClasses(classes ...*types.ClassInfo) {
	tc.tb.Helper()

	if err := tc.Index().Add(classes...); err != nil {
		tc.tb.Fatalf("failed to index classes: %v", err)
	}
	if err := tc.Index().Verify(); err != nil {
		tc.tb.Fatalf("class hierarchy is broken: %v", err)
	}
}

// RequireBuild builds the invoker configured by b or fails the test.
func (tc *TestContainer) RequireBuild(b *needle.InvokerBuilder) *needle.GeneratedInvoker {
	tc.tb.Helper()

	inv, err := b.Build()
	if err != nil {
		tc.tb.Fatalf("failed to build invoker: %v", err)
	}
	return inv
}

// RequireBuildError builds b and fails the test unless the build fails
// with code.
func (tc *TestContainer) RequireBuildError(b *needle.InvokerBuilder, code needle.ErrorCode) error {
	tc.tb.Helper()

	_, err := b.Build()
	if err == nil {
		tc.tb.Fatalf("expected build to fail with %s", code)
		return nil
	}
	if got := needle.ErrorCodeOf(err); got != code {
		tc.tb.Fatalf("expected build to fail with %s, got %s: %v", code, got, err)
	}
	return err
}

func (tc *TestContainer) AssertHasInvoker(name string) {
	tc.tb.Helper()

	if _, ok := tc.Invoker(name); !ok {
		tc.tb.Fatalf("expected container to have invoker %s", name)
	}
}

func MustProvide[T any](tc *TestContainer, t types.Type, provider needle.Provider[T], opts ...needle.ProviderOption) {
	tc.tb.Helper()

	if err := needle.Provide(tc.Container, t, provider, opts...); err != nil {
		tc.tb.Fatalf("failed to provide %s: %v", t, err)
	}
}

func MustProvideValue[T any](tc *TestContainer, t types.Type, value T, opts ...needle.ProviderOption) {
	tc.tb.Helper()

	if err := needle.ProvideValue(tc.Container, t, value, opts...); err != nil {
		tc.tb.Fatalf("failed to provide value %s: %v", t, err)
	}
}

func MustResolve[T any](tc *TestContainer, t types.Type, qualifiers ...string) T {
	tc.tb.Helper()

	v, h, err := needle.Resolve[T](context.Background(), tc.Container, t, qualifiers...)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", t, err)
	}
	tc.tb.Cleanup(func() { _ = h.Release() })
	return v
}

// MustCall invokes inv and fails the test on error.
func MustCall[T any](tc *TestContainer, inv needle.Invoker, instance any, args ...any) T {
	tc.tb.Helper()

	v, err := needle.Call[T](context.Background(), inv, instance, args...)
	if err != nil {
		tc.tb.Fatalf("invocation failed: %v", err)
	}
	return v
}

// Recorder collects events from concurrent callers in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Func returns a function recording event, handy as a release action.
func (r *Recorder) Func(event string) func() {
	return func() { r.Record(event) }
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

func (r *Recorder) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
