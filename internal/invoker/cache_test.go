package invoker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrGenerate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cache := NewCache()

	var generated atomic.Int32
	generate := func(info *Info) (*Generated, error) {
		generated.Add(1)
		return f.generator.Generate(info)
	}

	build := func(b *Builder) *Info {
		info, err := b.Build()
		require.NoError(t, err)
		return info
	}

	first, hit, err := cache.GetOrGenerate(build(f.builder(t, "Twice")), generate)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := cache.GetOrGenerate(build(f.builder(t, "Twice")), generate)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)

	wrapped, _, err := cache.GetOrGenerate(build(f.builder(t, "Twice").SetInvocationWrapper("svc.W", "Wrap")), generate)
	require.NoError(t, err)
	assert.NotSame(t, first, wrapped)

	assert.Equal(t, int32(2), generated.Load())
	assert.Equal(t, 2, cache.Len())

	names := cache.Names()
	assert.Len(t, names, 2)
	assert.IsNonDecreasing(t, names)

	got, ok := cache.Get(wrapped.Name())
	require.True(t, ok)
	assert.Same(t, wrapped, got)

	_, ok = cache.Get(wrapped.Info().ClassName())
	assert.False(t, ok)
}

func TestCache_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cache := NewCache()
	info, err := f.builder(t, "Twice").Build()
	require.NoError(t, err)

	cause := errors.New("generation failed")
	_, _, err = cache.GetOrGenerate(info, func(*Info) (*Generated, error) { return nil, cause })
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, cache.Len())

	gen, hit, err := cache.GetOrGenerate(info, f.generator.Generate)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, info.Identity(), gen.Identity())
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cache := NewCache()

	var generated atomic.Int32
	var wg sync.WaitGroup
	results := make([]*Generated, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := f.builder(t, "Twice").Build()
			if !assert.NoError(t, err) {
				return
			}
			gen, _, err := cache.GetOrGenerate(info, func(info *Info) (*Generated, error) {
				generated.Add(1)
				return f.generator.Generate(info)
			})
			assert.NoError(t, err)
			results[i] = gen
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), generated.Load())
	for _, gen := range results {
		assert.Same(t, results[0], gen)
	}
}
