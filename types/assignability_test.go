package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/needle-invoke/internal/errs"
)

func zoo(t *testing.T) *Index {
	t.Helper()

	idx := NewIndex()
	require.NoError(t, idx.Add(
		&ClassInfo{Name: "Pet", Interface: true},
		&ClassInfo{Name: "Animal"},
		&ClassInfo{Name: "Dog", Super: "Animal", Interfaces: []string{"Pet"}},
		&ClassInfo{Name: "Cat", Super: "Animal"},
	))
	return idx
}

func TestAssignability_IsSubtype(t *testing.T) {
	t.Parallel()

	s := NewAssignability(zoo(t))
	dog, cat, animal := Class("Dog"), Class("Cat"), Class("Animal")

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same primitive", Prim(Int), Prim(Int), true},
		{"different primitive", Prim(Int), Prim(Int64), false},
		{"primitive to root", Prim(Int), Object, false},
		{"class to itself", dog, dog, true},
		{"class to superclass", dog, animal, true},
		{"superclass to class", animal, dog, false},
		{"siblings", dog, cat, false},
		{"class to root", dog, Object, true},
		{"interfaces are not walked", dog, Class("Pet"), false},
		{"parameterized uses raw type", Parameterized("Dog", Object), animal, true},
		{"class to parameterized", dog, Parameterized("Animal", Prim(String)), true},
		{"array covariance", ArrayOf(dog, 1), ArrayOf(animal, 1), true},
		{"array dimension mismatch", ArrayOf(dog, 1), ArrayOf(animal, 2), false},
		{"nested arrays count dimensions", ArrayOf(ArrayOf(dog, 1), 1), ArrayOf(animal, 2), true},
		{"primitive arrays", ArrayOf(Prim(Int), 1), ArrayOf(Object, 1), false},
		{"array to class", ArrayOf(dog, 1), Object, false},
		{"class to array", dog, ArrayOf(dog, 1), false},
		{"void to void", Void, Void, true},
		{"void to no value", Void, NoValue, true},
		{"void to root", Void, Object, false},
		{"class to void", dog, Void, false},
		{"bounded variable", Var("T", dog), animal, true},
		{"unbounded variable target", dog, Var("T"), true},
		{"bounded variable target", animal, Var("T", dog), false},
		{"unbounded variable source", Var("T"), dog, false},
		{"error to root", Error, Object, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.IsSubtype(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			super, err := s.IsSupertype(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, super)
		})
	}
}

func TestAssignability_Errors(t *testing.T) {
	t.Parallel()

	s := NewAssignability(zoo(t))

	tests := []struct {
		name string
		a, b Type
	}{
		{"wildcard source", Wildcard(nil), Object},
		{"wildcard target", Class("Dog"), Wildcard(Class("Animal"))},
		{"unindexed class", Class("Fish"), Class("Animal")},
		{"unindexed target", Class("Dog"), Class("Fish")},
		{"unindexed parameterized target", Class("Dog"), Parameterized("Fish", Object)},
		{"nil", nil, Object},
		{"unindexed array element", ArrayOf(Class("Fish"), 1), ArrayOf(Object, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := s.IsSubtype(tt.a, tt.b)
			assert.True(t, errs.HasCode(err, errs.CodeInternal), "got %v", err)
		})
	}
}

func TestAssignability_CyclicHierarchy(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.Add(
		&ClassInfo{Name: "A", Super: "B"},
		&ClassInfo{Name: "B", Super: "A"},
		&ClassInfo{Name: "C"},
	))
	s := NewAssignability(idx)

	ok, err := s.IsSubtype(Class("A"), Class("B"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.IsSubtype(Class("A"), Class("C"))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.CodeInternal))
	assert.Contains(t, err.Error(), "inheritance cycle")
}
