// Package types describes the type shapes that invokers are configured
// against, independently of the Go type system.
//
// A discovery collaborator registers class descriptors in an Index. The
// invoker fabric then reasons about those descriptors only: parameter and
// return types of target methods, transformer candidates and the
// Assignability relation between them.
package types

import (
	"strings"
)

type Kind int

const (
	KindVoid Kind = iota
	KindPrimitive
	KindArray
	KindClass
	KindParameterized
	KindTypeVariable
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindClass:
		return "class"
	case KindParameterized:
		return "parameterized"
	case KindTypeVariable:
		return "type-variable"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

type Primitive int

const (
	Bool Primitive = iota + 1
	Int
	Int8
	Int16
	Int32
	Int64
	Uint
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
)

var primitiveNames = map[Primitive]string{
	Bool:    "bool",
	Int:     "int",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint:    "uint",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return "invalid"
}

// Type is an immutable type shape.
type Type interface {
	Kind() Kind
	// Name is the raw name: class name without type arguments, primitive
	// name, or the type variable identifier.
	Name() string
	String() string
}

type VoidType struct{}

func (VoidType) Kind() Kind { return KindVoid }
func (VoidType) Name() string { return "void" }
func (t VoidType) String() string { return t.Name() }

type PrimitiveType struct {
	Primitive Primitive
}

func (PrimitiveType) Kind() Kind { return KindPrimitive }
func (t PrimitiveType) Name() string { return t.Primitive.String() }
func (t PrimitiveType) String() string { return t.Name() }

type ArrayType struct {
	Component  Type
	Dimensions int
}

func (ArrayType) Kind() Kind { return KindArray }

func (t ArrayType) Name() string {
	return strings.Repeat("[]", t.Dimensions) + t.Component.Name()
}

func (t ArrayType) String() string {
	return strings.Repeat("[]", t.Dimensions) + t.Component.String()
}

type ClassType struct {
	name string
}

func (ClassType) Kind() Kind { return KindClass }
func (t ClassType) Name() string { return t.name }
func (t ClassType) String() string { return t.name }

type ParameterizedType struct {
	name      string
	Arguments []Type
}

func (ParameterizedType) Kind() Kind { return KindParameterized }
func (t ParameterizedType) Name() string { return t.name }

func (t ParameterizedType) String() string {
	args := make([]string, len(t.Arguments))
	for i, a := range t.Arguments {
		args[i] = a.String()
	}
	return t.name + "[" + strings.Join(args, ", ") + "]"
}

type TypeVariable struct {
	Identifier string
	Bounds     []Type
}

func (TypeVariable) Kind() Kind { return KindTypeVariable }
func (t TypeVariable) Name() string { return t.Identifier }

func (t TypeVariable) String() string {
	if len(t.Bounds) == 0 {
		return t.Identifier
	}
	bounds := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		bounds[i] = b.String()
	}
	return t.Identifier + " " + strings.Join(bounds, " & ")
}

// FirstBound returns the bound a type variable reduces to.
func (t TypeVariable) FirstBound() Type {
	if len(t.Bounds) == 0 {
		return Object
	}
	return t.Bounds[0]
}

type WildcardType struct {
	Bound Type
}

func (WildcardType) Kind() Kind { return KindWildcard }
func (WildcardType) Name() string { return "?" }

func (t WildcardType) String() string {
	if t.Bound == nil {
		return "?"
	}
	return "? " + t.Bound.String()
}

const (
	ObjectName  = "any"
	ErrorName   = "error"
	NoValueName = "needle.NoValue"
	InvokerName = "needle.Invoker"
	CleanupName = "needle.Cleanup"
)

var (
	Void    Type = VoidType{}
	Object  Type = ClassType{name: ObjectName}
	Error   Type = ClassType{name: ErrorName}
	NoValue Type = ClassType{name: NoValueName}
	Invoker Type = ClassType{name: InvokerName}
	Cleanup Type = ClassType{name: CleanupName}
	// Arguments is the shape of a caller-supplied argument array.
	Arguments Type = ArrayType{Component: Object, Dimensions: 1}
)

func Prim(p Primitive) Type {
	return PrimitiveType{Primitive: p}
}

func Class(name string) Type {
	return ClassType{name: name}
}

func ArrayOf(component Type, dimensions int) Type {
	return ArrayType{Component: component, Dimensions: dimensions}
}

func Parameterized(name string, args ...Type) Type {
	return ParameterizedType{name: name, Arguments: args}
}

func Var(identifier string, bounds ...Type) Type {
	return TypeVariable{Identifier: identifier, Bounds: bounds}
}

func Wildcard(bound Type) Type {
	return WildcardType{Bound: bound}
}

// Equal reports structural equality of two shapes.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case ArrayType:
		y := b.(ArrayType)
		return x.Dimensions == y.Dimensions && Equal(x.Component, y.Component)
	case ParameterizedType:
		y := b.(ParameterizedType)
		if x.name != y.name || len(x.Arguments) != len(y.Arguments) {
			return false
		}
		for i := range x.Arguments {
			if !Equal(x.Arguments[i], y.Arguments[i]) {
				return false
			}
		}
		return true
	case TypeVariable:
		y := b.(TypeVariable)
		if x.Identifier != y.Identifier || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		for i := range x.Bounds {
			if !Equal(x.Bounds[i], y.Bounds[i]) {
				return false
			}
		}
		return true
	case WildcardType:
		return Equal(x.Bound, b.(WildcardType).Bound)
	default:
		return a.Name() == b.Name()
	}
}

// IsAnyType reports whether t accepts or produces any value: the root
// class, or a type variable that is unbounded or bounded by the root.
func IsAnyType(t Type) bool {
	switch x := t.(type) {
	case ClassType:
		return x.name == ObjectName
	case TypeVariable:
		if len(x.Bounds) == 0 {
			return true
		}
		return IsAnyType(x.Bounds[0])
	default:
		return false
	}
}

// IsGeneric reports whether t carries type arguments or is a type variable.
func IsGeneric(t Type) bool {
	switch x := t.(type) {
	case ParameterizedType, TypeVariable, WildcardType:
		return true
	case ArrayType:
		return IsGeneric(x.Component)
	default:
		return false
	}
}
