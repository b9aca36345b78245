package invoker

import (
	"fmt"
	"strings"

	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/types"
)

// Candidate is a transformer method that matched its expected type.
type Candidate struct {
	Method      *types.MethodInfo
	UsesCleanup bool
}

func (c *Candidate) String() string {
	return describe(c.Method)
}

type mismatch struct {
	method *types.MethodInfo
	reason string
}

func (m mismatch) String() string {
	return describe(m.method) + ": " + m.reason
}

// Resolver binds transformer and wrapper references to indexed methods.
type Resolver struct {
	index  *types.Index
	assign *types.Assignability
}

func NewResolver(index *types.Index) *Resolver {
	return &Resolver{
		index:  index,
		assign: types.NewAssignability(index),
	}
}

// FindTransformer returns the only method of t's owner that can adapt a
// value of the expected type.
func (r *Resolver) FindTransformer(t *Transformer, expected types.Type, invoker *Info) (*Candidate, error) {
	if t.Kind == KindWrapper {
		return nil, errs.Internal("%s is not a value transformer", t)
	}
	if types.IsGeneric(expected) {
		return nil, resolutionError(invoker, fmt.Sprintf(
			"cannot resolve %s against generic type %s", t, expected,
		), nil)
	}

	methods, err := r.candidateMethods(t)
	if err != nil {
		return nil, err
	}

	var matching []*Candidate
	var notMatching []mismatch
	for _, m := range methods {
		reason, err := r.match(t, m, expected)
		if err != nil {
			return nil, resolutionError(invoker, fmt.Sprintf("cannot check %s", describe(m)), err)
		}
		if reason != "" {
			notMatching = append(notMatching, mismatch{method: m, reason: reason})
			continue
		}
		matching = append(matching, &Candidate{Method: m, UsesCleanup: usesCleanup(m)})
	}

	if len(matching) == 1 {
		return matching[0], nil
	}

	if len(matching) == 0 {
		return nil, resolutionError(
			invoker,
			fmt.Sprintf("no matching method found for %s\n%s", t, expectation(t, expected)),
			nil,
		).WithCandidates(mismatches(notMatching))
	}

	found := make([]string, len(matching))
	for i, c := range matching {
		found[i] = c.String()
	}
	return nil, resolutionError(
		invoker,
		fmt.Sprintf("too many matching methods for %s", t),
		nil,
	).WithCandidates(found)
}

// candidateMethods walks the owner and its superclasses before any
// interface. Static methods count only on the owner itself; an instance
// method hidden by an override seen earlier is skipped.
func (r *Resolver) candidateMethods(t *Transformer) ([]*types.MethodInfo, error) {
	owner, ok := r.index.Class(t.Owner)
	if !ok {
		return nil, errs.Internal("transformer class %s is not indexed", t.Owner)
	}

	var queue []*types.ClassInfo
	chain := make(map[string]bool)
	for c := owner; c != nil; {
		if chain[c.Name] {
			return nil, errs.Internal("inheritance cycle through %s", c.Name)
		}
		chain[c.Name] = true
		queue = append(queue, c)
		super, err := r.index.Superclass(c)
		if err != nil {
			return nil, err
		}
		c = super
	}

	var methods []*types.MethodInfo
	seen := make(map[types.MethodKey]bool)
	visited := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current.Name] {
			continue
		}
		visited[current.Name] = true

		for _, m := range current.Methods {
			if m.Name != t.Method {
				continue
			}
			if m.Static {
				if current == owner {
					methods = append(methods, m)
				}
				continue
			}
			key := types.KeyOf(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			methods = append(methods, m)
		}

		for _, name := range current.Interfaces {
			iface, ok := r.index.Class(name)
			if !ok {
				return nil, errs.Internal("interface %s of %s is not indexed", name, current.Name)
			}
			queue = append(queue, iface)
		}
	}
	return methods, nil
}

// match returns an empty reason when m fits t, or why it does not.
func (r *Resolver) match(t *Transformer, m *types.MethodInfo, expected types.Type) (string, error) {
	switch {
	case t.IsInput():
		// The produced value feeds the target method, so it must be a
		// subtype of the expected type. What comes in is not checked.
		ret := m.ReturnType()
		returnOk := types.IsAnyType(ret)
		if !returnOk {
			ok, err := r.assign.IsSubtype(ret, expected)
			if err != nil {
				return "", err
			}
			returnOk = ok
		}

		if m.Static {
			switch {
			case m.ParamCount() != 1 && m.ParamCount() != 2:
				return fmt.Sprintf("static method takes %d parameters, expected 1 or 2", m.ParamCount()), nil
			case m.ParamCount() == 2 && !isCleanup(m.Params[1]):
				return fmt.Sprintf("2nd parameter is %s, expected %s", m.Params[1], types.CleanupName), nil
			case !returnOk:
				return fmt.Sprintf("returns %s, not a subtype of %s", ret, expected), nil
			}
			return "", nil
		}
		switch {
		case m.ParamCount() != 0:
			return fmt.Sprintf("instance method takes %d parameters, expected none", m.ParamCount()), nil
		case !returnOk:
			return fmt.Sprintf("returns %s, not a subtype of %s", ret, expected), nil
		}
		return "", nil

	case t.IsOutput():
		// The consumed value comes from the target method, so the
		// transformer must accept a supertype. What comes out is not checked.
		if m.Static {
			if m.ParamCount() != 1 {
				return fmt.Sprintf("static method takes %d parameters, expected 1", m.ParamCount()), nil
			}
			if types.IsAnyType(m.Params[0]) {
				return "", nil
			}
			ok, err := r.assign.IsSupertype(m.Params[0], expected)
			if err != nil {
				return "", err
			}
			if !ok {
				return fmt.Sprintf("parameter is %s, not a supertype of %s", m.Params[0], expected), nil
			}
			return "", nil
		}
		if m.ParamCount() != 0 {
			return fmt.Sprintf("instance method takes %d parameters, expected none", m.ParamCount()), nil
		}
		ok, err := r.assign.IsSupertype(m.DeclaringClass().Type(), expected)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("declared on %s, not a supertype of %s", m.DeclaringClass().Name, expected), nil
		}
		return "", nil

	default:
		return "", errs.Internal("unexpected transformer kind %s", t.Kind)
	}
}

// FindWrapper returns the static wrapper method configured for invoker.
func (r *Resolver) FindWrapper(invoker *Info) (*types.MethodInfo, error) {
	wrapper := invoker.InvocationWrapper
	owner, ok := r.index.Class(wrapper.Owner)
	if !ok {
		return nil, errs.Internal("wrapper class %s is not indexed", wrapper.Owner)
	}

	var matching []*types.MethodInfo
	var notMatching []mismatch
	for _, m := range owner.Methods {
		if !m.Static || m.Name != wrapper.Method {
			continue
		}
		reason, err := r.matchWrapper(m, invoker.BeanClass.Type())
		if err != nil {
			return nil, resolutionError(invoker, fmt.Sprintf("cannot check %s", describe(m)), err)
		}
		if reason != "" {
			notMatching = append(notMatching, mismatch{method: m, reason: reason})
			continue
		}
		matching = append(matching, m)
	}

	if len(matching) == 1 {
		return matching[0], nil
	}

	if len(matching) == 0 {
		return nil, resolutionError(invoker, fmt.Sprintf(
			"no matching method found for %s\n"+
				"\tmatching methods must be static and take 3 parameters (instance, argument array, invoker)\n"+
				"\tthe 1st parameter must be a supertype of %s, possibly %s\n"+
				"\tthe 2nd parameter must be %s\n"+
				"\tthe 3rd parameter must be %s[type of 1st parameter, some type]",
			wrapper, invoker.BeanClass.Name, types.ObjectName, types.Arguments, types.InvokerName,
		), nil).WithCandidates(mismatches(notMatching))
	}

	found := make([]string, len(matching))
	for i, m := range matching {
		found[i] = describe(m)
	}
	return nil, resolutionError(invoker, fmt.Sprintf("too many matching methods for %s", wrapper), nil).
		WithCandidates(found)
}

func (r *Resolver) matchWrapper(m *types.MethodInfo, beanType types.Type) (string, error) {
	if m.ParamCount() != 3 {
		return fmt.Sprintf("takes %d parameters, expected 3", m.ParamCount()), nil
	}
	if !types.Equal(m.Params[1], types.Arguments) {
		return fmt.Sprintf("2nd parameter is %s, expected %s", m.Params[1], types.Arguments), nil
	}
	if m.Params[2].Name() != types.InvokerName {
		return fmt.Sprintf("3rd parameter is %s, expected %s", m.Params[2], types.InvokerName), nil
	}

	instanceType := m.Params[0]
	instanceOk := types.IsAnyType(instanceType)
	if !instanceOk {
		ok, err := r.assign.IsSupertype(instanceType, beanType)
		if err != nil {
			return "", err
		}
		instanceOk = ok
	}
	if !instanceOk {
		return fmt.Sprintf("1st parameter is %s, not a supertype of %s", instanceType, beanType), nil
	}

	switch p := m.Params[2].(type) {
	case types.ClassType:
		return "", nil
	case types.ParameterizedType:
		if len(p.Arguments) != 2 {
			return fmt.Sprintf("3rd parameter %s must have 2 type arguments", p), nil
		}
		if !types.Equal(p.Arguments[0], instanceType) {
			return fmt.Sprintf("3rd parameter %s does not target %s", p, instanceType), nil
		}
		return "", nil
	default:
		return fmt.Sprintf("3rd parameter %s has unsupported shape", m.Params[2]), nil
	}
}

func usesCleanup(m *types.MethodInfo) bool {
	return m.Static && m.ParamCount() == 2 && isCleanup(m.Params[1])
}

func isCleanup(t types.Type) bool {
	switch p := t.(type) {
	case types.ClassType:
		return p.Name() == types.CleanupName
	case types.ParameterizedType:
		return p.Name() == types.CleanupName && len(p.Arguments) == 0
	default:
		return false
	}
}

func expectation(t *Transformer, expected types.Type) string {
	if t.IsInput() {
		return "\tmatching static methods must take 1 or 2 parameters and return " + expected.String() + " (or subtype)\n" +
			"\t(if the static method takes 2 parameters, the 2nd must be " + types.CleanupName + ")\n" +
			"\tmatching instance methods must take no parameter and return " + expected.String() + " (or subtype)"
	}
	return "\tmatching static method must take 1 parameter of type " + expected.String() + " (or supertype)\n" +
		"\tmatching instance methods must be declared on " + expected.String() + " (or supertype) and take no parameter"
}

func mismatches(ms []mismatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func describe(m *types.MethodInfo) string {
	var b strings.Builder
	b.WriteString(m.String())
	if d := m.DeclaringClass(); d != nil {
		b.WriteString(" declared on ")
		b.WriteString(d.Name)
	}
	return b.String()
}

func resolutionError(invoker *Info, message string, cause error) *errs.Error {
	return errs.New(
		errs.CodeTransformerResolution,
		"error creating invoker for method "+invoker.String()+": "+message,
		cause,
	).WithService(invoker.String())
}
