package types

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/internal/graph"
)

// Func implements a method. Instance methods receive their receiver,
// static methods receive nil.
type Func func(ctx context.Context, receiver any, args []any) (any, error)

type ClassInfo struct {
	Name       string
	Super      string
	Interfaces []string
	Interface  bool
	Qualifiers []string
	Methods    []*MethodInfo
	// New constructs an instance of the class, if it can be instantiated
	// without arguments.
	New func() (any, error)
}

func (c *ClassInfo) Type() Type {
	return Class(c.Name)
}

func (c *ClassInfo) Method(name string) (*MethodInfo, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassInfo) String() string {
	return c.Name
}

type MethodInfo struct {
	Name            string
	Static          bool
	Params          []Type
	ParamQualifiers [][]string
	Return          Type
	Func            Func

	declaring *ClassInfo
}

func (m *MethodInfo) DeclaringClass() *ClassInfo {
	return m.declaring
}

func (m *MethodInfo) ParamCount() int {
	return len(m.Params)
}

func (m *MethodInfo) Qualifiers(position int) []string {
	if position < 0 || position >= len(m.ParamQualifiers) {
		return nil
	}
	return m.ParamQualifiers[position]
}

func (m *MethodInfo) ReturnType() Type {
	if m.Return == nil {
		return Void
	}
	return m.Return
}

func (m *MethodInfo) String() string {
	var b strings.Builder
	if m.Static {
		b.WriteString("static ")
	}
	b.WriteString(m.Name)
	b.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") ")
	b.WriteString(m.ReturnType().String())
	return b.String()
}

// MethodKey identifies a method by name and erased parameter types.
type MethodKey struct {
	Name   string
	Params string
}

func KeyOf(m *MethodInfo) MethodKey {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name()
	}
	return MethodKey{Name: m.Name, Params: strings.Join(params, ",")}
}

type Index struct {
	mu      sync.RWMutex
	classes map[string]*ClassInfo
}

func NewIndex() *Index {
	idx := &Index{
		classes: make(map[string]*ClassInfo),
	}
	idx.classes[ObjectName] = &ClassInfo{Name: ObjectName}
	for _, c := range builtins() {
		_ = idx.Add(c)
	}
	return idx
}

func builtins() []*ClassInfo {
	return []*ClassInfo{
		{
			Name:      ErrorName,
			Interface: true,
			Methods: []*MethodInfo{
				{
					Name:   "Error",
					Return: Prim(String),
					Func: func(_ context.Context, receiver any, _ []any) (any, error) {
						err, ok := receiver.(error)
						if !ok {
							return nil, fmt.Errorf("receiver %T is not an error", receiver)
						}
						return err.Error(), nil
					},
				},
			},
		},
		{Name: NoValueName},
		{Name: InvokerName, Interface: true},
		{Name: CleanupName, Interface: true},
	}
}

func (i *Index) Add(classes ...*ClassInfo) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, c := range classes {
		if c == nil || c.Name == "" {
			return fmt.Errorf("class descriptor without a name")
		}
		if _, exists := i.classes[c.Name]; exists {
			return fmt.Errorf("class already indexed: %s", c.Name)
		}
		if c.Super == "" && c.Name != ObjectName {
			c.Super = ObjectName
		}
		for _, m := range c.Methods {
			m.declaring = c
		}
		i.classes[c.Name] = c
	}
	return nil
}

func (i *Index) Class(name string) (*ClassInfo, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	c, ok := i.classes[name]
	return c, ok
}

// Superclass returns the superclass of c, or nil for the root class.
func (i *Index) Superclass(c *ClassInfo) (*ClassInfo, error) {
	if c.Name == ObjectName {
		return nil, nil
	}
	super, ok := i.Class(c.Super)
	if !ok {
		return nil, errs.Internal("superclass %s of %s is not indexed", c.Super, c.Name)
	}
	return super, nil
}

// Closure returns the raw names of name, all its superclasses and all
// interfaces they implement, transitively, in discovery order.
func (i *Index) Closure(name string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	queue := []string{name}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true

		c, ok := i.Class(current)
		if !ok {
			return nil, errs.Internal("class %s is not indexed", current)
		}
		out = append(out, current)
		if c.Name != ObjectName {
			queue = append(queue, c.Super)
		}
		queue = append(queue, c.Interfaces...)
	}
	return out, nil
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.classes)
}

func (i *Index) hierarchy() *graph.Graph {
	i.mu.RLock()
	defer i.mu.RUnlock()

	g := graph.New()
	for name, c := range i.classes {
		if name == ObjectName {
			g.Add(name)
			continue
		}
		g.Add(name, append([]string{c.Super}, c.Interfaces...)...)
	}
	return g
}

// Verify fails when a supertype of an indexed class is missing from the
// index or when superclasses and interfaces form a cycle. Subtype checks
// on an index that does not verify fail with an internal error.
func (i *Index) Verify() error {
	g := i.hierarchy()
	if missing := g.Missing(); len(missing) > 0 {
		return errs.Internal("supertypes are not indexed: %s", strings.Join(missing, ", "))
	}
	if cycles := g.Cycles(); len(cycles) > 0 {
		return errs.Internal("inheritance cycle between %s", strings.Join(cycles[0], ", "))
	}
	return nil
}

// Hierarchy returns every indexed class name after all of its supertypes.
func (i *Index) Hierarchy() ([]string, error) {
	order, err := i.hierarchy().Order()
	if err != nil {
		return nil, errs.New(errs.CodeInternal, "cannot order classes", err)
	}
	return order, nil
}
