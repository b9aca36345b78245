package invoker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/types"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

func newIndex(t *testing.T, classes ...*types.ClassInfo) *types.Index {
	t.Helper()

	idx := types.NewIndex()
	require.NoError(t, idx.Add(classes...))
	return idx
}

func class(t *testing.T, idx *types.Index, name string) *types.ClassInfo {
	t.Helper()

	c, ok := idx.Class(name)
	require.True(t, ok, "class %s not indexed", name)
	return c
}

func method(t *testing.T, idx *types.Index, className, name string) *types.MethodInfo {
	t.Helper()

	m, ok := class(t, idx, className).Method(name)
	require.True(t, ok, "method %s#%s not indexed", className, name)
	return m
}

func returning(v any) types.Func {
	return func(context.Context, any, []any) (any, error) {
		return v, nil
	}
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

type fakeLookup struct {
	rec   *recorder
	deps  map[string]*fakeDependency
	fails map[string]error
}

func newFakeLookup(rec *recorder) *fakeLookup {
	return &fakeLookup{
		rec:   rec,
		deps:  make(map[string]*fakeDependency),
		fails: make(map[string]error),
	}
}

func (l *fakeLookup) provide(typeName string, releasable bool, value any) *fakeDependency {
	d := &fakeDependency{rec: l.rec, name: typeName, releasable: releasable, value: value}
	l.deps[typeName] = d
	return d
}

func (l *fakeLookup) Resolve(t types.Type, qualifiers []string) (Dependency, error) {
	if err, ok := l.fails[t.Name()]; ok {
		return nil, err
	}
	d, ok := l.deps[t.Name()]
	if !ok {
		return nil, errs.Newf(errs.CodeUnsatisfiedDependency, "nothing for %s %v", t, qualifiers)
	}
	return d, nil
}

type fakeDependency struct {
	rec        *recorder
	name       string
	releasable bool
	value      any

	mu       sync.Mutex
	handles  int
	released int
}

func (d *fakeDependency) Handle(context.Context) (DependencyHandle, error) {
	d.mu.Lock()
	d.handles++
	d.mu.Unlock()

	if d.rec != nil {
		d.rec.record("lookup:" + d.name)
	}
	return &fakeHandle{dep: d}, nil
}

func (d *fakeDependency) String() string {
	return "fake " + d.name
}

func (d *fakeDependency) counts() (handles, released int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.handles, d.released
}

type fakeHandle struct {
	dep *fakeDependency
}

func (h *fakeHandle) Get() any {
	return h.dep.value
}

func (h *fakeHandle) Releasable() bool {
	return h.dep.releasable
}

func (h *fakeHandle) Release() error {
	h.dep.mu.Lock()
	h.dep.released++
	h.dep.mu.Unlock()

	if h.dep.rec != nil {
		h.dep.rec.record("release:" + h.dep.name)
	}
	if h.dep.value == "broken" {
		return errors.New("release failed")
	}
	return nil
}

func recordingFunc(rec *recorder, event string, fn types.Func) types.Func {
	return func(ctx context.Context, receiver any, args []any) (any, error) {
		rec.record(event)
		return fn(ctx, receiver, args)
	}
}
