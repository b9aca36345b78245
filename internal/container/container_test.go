package container

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/scope"
	"github.com/danpasecinic/needle-invoke/types"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	index := types.NewIndex()
	require.NoError(t, index.Add(
		&types.ClassInfo{Name: "Reader", Interface: true},
		&types.ClassInfo{Name: "Base", Interfaces: []string{"Reader"}},
		&types.ClassInfo{Name: "File", Super: "Base"},
		&types.ClassInfo{Name: "Socket", Super: "Base"},
	))
	return New(&Config{Index: index})
}

func value(v any) ProviderFunc {
	return func(context.Context) (any, error) {
		return v, nil
	}
}

func TestContainer_RegisterComputesBeanTypes(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	b := &Bean{Type: types.Class("File"), Provider: value("f")}
	require.NoError(t, c.Register(b))

	assert.Equal(t, "File", b.ID)
	assert.ElementsMatch(t, []string{"File", "Base", "Reader", types.ObjectName}, b.BeanTypes())
	assert.ElementsMatch(t, []string{QualifierDefault, QualifierAny}, b.Qualifiers)
	assert.True(t, c.Has("File"))
	assert.Equal(t, 1, c.Size())
}

func TestContainer_RegisterErrors(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)

	err := c.Register(&Bean{ID: "x", Provider: value(1)})
	assert.True(t, errs.HasCode(err, errs.CodeInvalidConfiguration))

	err = c.Register(&Bean{Type: types.Class("File")})
	assert.True(t, errs.HasCode(err, errs.CodeInvalidConfiguration))

	require.NoError(t, c.Register(&Bean{Type: types.Class("File"), Provider: value(1)}))
	err = c.Register(&Bean{Type: types.Class("File"), Provider: value(2)})
	assert.True(t, errs.HasCode(err, errs.CodeDuplicateService))

	err = c.Register(&Bean{Type: types.Class("Unknown"), Provider: value(3)})
	assert.True(t, errs.HasCode(err, errs.CodeInternal))
}

func TestContainer_PrimitiveBean(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	require.NoError(t, c.Register(&Bean{Type: types.Prim(types.Int), Provider: value(42)}))

	b, err := c.Resolve(types.Prim(types.Int), nil)
	require.NoError(t, err)
	assert.Equal(t, "int", b.ID)

	_, err = c.Resolve(types.Prim(types.Int64), nil)
	assert.True(t, errs.HasCode(err, errs.CodeUnsatisfiedDependency))
}

func TestContainer_ResolveBeans(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	require.NoError(t, c.Register(&Bean{ID: "file", Type: types.Class("File"), Provider: value(1)}))
	require.NoError(t, c.Register(&Bean{
		ID: "socket", Type: types.Class("Socket"), Qualifiers: []string{"Remote"}, Provider: value(2),
	}))
	require.NoError(t, c.Register(&Bean{
		ID: "named", Type: types.Class("Socket"), Qualifiers: []string{Named("backup")}, Provider: value(3),
	}))

	tests := []struct {
		name       string
		t          types.Type
		qualifiers []string
		want       []string
	}{
		{"exact type", types.Class("File"), nil, []string{"file"}},
		{"superclass", types.Class("Base"), nil, []string{"file", "named"}},
		{"interface", types.Class("Reader"), nil, []string{"file", "named"}},
		{"any qualifier", types.Class("Base"), []string{QualifierAny}, []string{"file", "socket", "named"}},
		{"custom qualifier", types.Class("Base"), []string{"Remote"}, []string{"socket"}},
		{"named qualifier", types.Class("Socket"), []string{Named("backup")}, []string{"named"}},
		{"parameterized raw type", types.Parameterized("File", types.Object), nil, []string{"file"}},
		{"no match", types.Class("Socket"), []string{"Remote", QualifierDefault}, nil},
		{"void", types.Void, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			beans, err := c.ResolveBeans(tt.t, tt.qualifiers)
			require.NoError(t, err)

			var ids []string
			for _, b := range beans {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestContainer_ResolveBeansRejectsTypeVariables(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	_, err := c.ResolveBeans(types.Var("T"), nil)
	assert.True(t, errs.HasCode(err, errs.CodeInternal))
}

func TestContainer_ResolveAmbiguity(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	require.NoError(t, c.Register(&Bean{ID: "file", Type: types.Class("File"), Provider: value(1)}))
	require.NoError(t, c.Register(&Bean{ID: "socket", Type: types.Class("Socket"), Provider: value(2)}))

	_, err := c.Resolve(types.Class("Base"), nil)
	require.True(t, errs.HasCode(err, errs.CodeAmbiguousDependency))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Len(t, e.Candidates, 2)

	require.NoError(t, c.Register(&Bean{
		ID: "primary", Type: types.Class("File"), Qualifiers: []string{QualifierDefault}, Primary: true, Provider: value(3),
	}))
	b, err := c.Resolve(types.Class("Base"), nil)
	require.NoError(t, err)
	assert.Equal(t, "primary", b.ID)

	require.NoError(t, c.Register(&Bean{ID: "primary2", Type: types.Class("Socket"), Primary: true, Provider: value(4)}))
	_, err = c.Resolve(types.Class("Base"), nil)
	assert.True(t, errs.HasCode(err, errs.CodeAmbiguousDependency))
}

func TestContainer_Singleton(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	var calls atomic.Int32
	b := &Bean{
		Type: types.Class("File"),
		Provider: func(context.Context) (any, error) {
			return calls.Add(1), nil
		},
	}
	require.NoError(t, c.Register(b))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := c.Instance(context.Background(), b)
			assert.NoError(t, err)
			assert.Equal(t, int32(1), h.Get())
			assert.False(t, h.Releasable())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, b.Instantiated())
}

func TestContainer_DependentRelease(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	var created, destroyed atomic.Int32
	b := &Bean{
		Type:  types.Class("File"),
		Scope: scope.Dependent,
		Provider: func(context.Context) (any, error) {
			return created.Add(1), nil
		},
		Destroy: func(any) error {
			destroyed.Add(1)
			return nil
		},
	}
	require.NoError(t, c.Register(b))

	h1, err := c.Instance(context.Background(), b)
	require.NoError(t, err)
	h2, err := c.Instance(context.Background(), b)
	require.NoError(t, err)

	assert.NotEqual(t, h1.Get(), h2.Get())
	assert.True(t, h1.Releasable())

	require.NoError(t, h1.Release())
	require.NoError(t, h1.Release())
	assert.Equal(t, int32(1), destroyed.Load())

	require.NoError(t, h2.Release())
	assert.Equal(t, int32(2), destroyed.Load())
	assert.False(t, b.Instantiated())
}

func TestContainer_RequestScope(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	var created atomic.Int32
	b := &Bean{
		Type:  types.Class("File"),
		Scope: scope.Request,
		Provider: func(context.Context) (any, error) {
			return created.Add(1), nil
		},
	}
	require.NoError(t, c.Register(b))

	_, err := c.Instance(context.Background(), b)
	assert.True(t, errs.HasCode(err, errs.CodeScopeNotFound))

	ctx := WithRequestScope(context.Background())
	h1, err := c.Instance(ctx, b)
	require.NoError(t, err)
	h2, err := c.Instance(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, h1.Get(), h2.Get())
	assert.False(t, h1.Releasable())

	h3, err := c.Instance(WithRequestScope(context.Background()), b)
	require.NoError(t, err)
	assert.NotEqual(t, h1.Get(), h3.Get())
}

func TestContainer_ProviderError(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	cause := errors.New("provider failed")
	b := &Bean{
		Type: types.Class("File"),
		Provider: func(context.Context) (any, error) {
			return nil, cause
		},
	}
	require.NoError(t, c.Register(b))

	_, err := c.Instance(context.Background(), b)
	assert.True(t, errs.HasCode(err, errs.CodeProviderFailed))
	assert.ErrorIs(t, err, cause)
	assert.False(t, b.Instantiated())
}

func TestContainer_ResolveHooks(t *testing.T) {
	t.Parallel()

	var keys []string
	c := New(&Config{OnResolve: []ResolveHook{
		func(key string, _ time.Duration, _ error) { keys = append(keys, key) },
	}})
	b := &Bean{ID: "answer", Type: types.Prim(types.Int), Provider: value(42)}
	require.NoError(t, c.Register(b))

	_, err := c.Instance(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []string{"answer"}, keys)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&Bean{ID: "a"})
	r.Register(&Bean{ID: "b"})
	r.Register(&Bean{ID: "c"})

	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	assert.Equal(t, 3, r.Size())

	assert.True(t, r.Has("b"))
	assert.False(t, r.Has("d"))

	b, ok := r.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", b.ID)
}

func TestNormalizeQualifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"none", nil, []string{QualifierDefault, QualifierAny}},
		{"named only", []string{Named("x")}, []string{Named("x"), QualifierDefault, QualifierAny}},
		{"custom", []string{"Remote"}, []string{"Remote", QualifierAny}},
		{"explicit default", []string{QualifierDefault}, []string{QualifierDefault, QualifierAny}},
		{"any only", []string{QualifierAny}, []string{QualifierAny, QualifierDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeQualifiers(tt.in))
		})
	}
}
