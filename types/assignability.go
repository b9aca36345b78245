package types

import (
	"github.com/danpasecinic/needle-invoke/internal/errs"
)

// Assignability is a structural subtype relation over indexed types.
//
// Classes are related through their superclass chain only. Type variables
// reduce to their first bound. Void is related to itself and to the
// no-value class, nothing else.
type Assignability struct {
	index *Index
}

func NewAssignability(index *Index) *Assignability {
	return &Assignability{index: index}
}

// IsSubtype reports whether a is a subtype of, or equal to, b. It fails for
// shapes it cannot decide on, such as wildcards or classes missing from the
// index.
func (s *Assignability) IsSubtype(a, b Type) (bool, error) {
	if a == nil || b == nil {
		return false, errs.Internal("cannot determine assignability between %v and %v", a, b)
	}
	if a.Kind() == KindWildcard || b.Kind() == KindWildcard {
		return false, errs.Internal("cannot determine assignability between %s and %s", a, b)
	}

	if tv, ok := a.(TypeVariable); ok {
		return s.IsSubtype(tv.FirstBound(), b)
	}
	if tv, ok := b.(TypeVariable); ok {
		return s.IsSubtype(a, tv.FirstBound())
	}

	switch a.Kind() {
	case KindVoid:
		return b.Kind() == KindVoid || b.Kind() == KindClass && b.Name() == NoValueName, nil
	case KindPrimitive:
		return b.Kind() == KindPrimitive && a.(PrimitiveType).Primitive == b.(PrimitiveType).Primitive, nil
	case KindArray:
		if b.Kind() != KindArray {
			return false, nil
		}
		if arrayDimensions(a) != arrayDimensions(b) {
			return false, nil
		}
		return s.IsSubtype(arrayElement(a), arrayElement(b))
	case KindClass, KindParameterized:
		switch b.Kind() {
		case KindClass, KindParameterized:
			return s.isClassSubtype(a.Name(), b.Name())
		default:
			return false, nil
		}
	default:
		return false, errs.Internal("cannot determine assignability between %s and %s", a, b)
	}
}

func (s *Assignability) IsSupertype(a, b Type) (bool, error) {
	return s.IsSubtype(b, a)
}

func (s *Assignability) isClassSubtype(a, b string) (bool, error) {
	c, ok := s.index.Class(a)
	if !ok {
		return false, errs.Internal("class %s is not indexed", a)
	}
	if _, ok := s.index.Class(b); !ok {
		return false, errs.Internal("class %s is not indexed", b)
	}

	visited := make(map[string]bool)
	for c != nil {
		if c.Name == b {
			return true, nil
		}
		if visited[c.Name] {
			return false, errs.Internal("inheritance cycle through %s", c.Name)
		}
		visited[c.Name] = true

		super, err := s.index.Superclass(c)
		if err != nil {
			return false, err
		}
		c = super
	}
	return false, nil
}

func arrayDimensions(t Type) int {
	dimensions := 0
	for {
		arr, ok := t.(ArrayType)
		if !ok {
			return dimensions
		}
		dimensions += arr.Dimensions
		t = arr.Component
	}
}

func arrayElement(t Type) Type {
	for {
		arr, ok := t.(ArrayType)
		if !ok {
			return t
		}
		t = arr.Component
	}
}
