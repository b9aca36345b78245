package invoker

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/danpasecinic/needle-invoke/types"
)

// Info is the frozen configuration of an invoker. It never changes after
// Build returns it.
type Info struct {
	BeanClass *types.ClassInfo
	Method    *types.MethodInfo

	InvocationWrapper *Transformer

	InstanceTransformer    *Transformer
	ReturnValueTransformer *Transformer
	ExceptionTransformer   *Transformer

	argumentTransformers []*Transformer
	instanceLookup       bool
	argumentLookups      []bool

	identity         string
	className        string
	wrapperClassName string
}

func newInfo(b *Builder) *Info {
	info := &Info{
		BeanClass:              b.beanClass,
		Method:                 b.method,
		InvocationWrapper:      b.invocationWrapper,
		InstanceTransformer:    b.instanceTransformer,
		ReturnValueTransformer: b.returnValueTransformer,
		ExceptionTransformer:   b.exceptionTransformer,
		argumentTransformers:   slices.Clone(b.argumentTransformers),
		instanceLookup:         b.instanceLookup,
		argumentLookups:        slices.Clone(b.argumentLookups),
	}

	info.identity = fingerprint(info)
	prefix := declaringName(info) + "_" + info.Method.Name
	info.className = prefix + "_Invoker_" + info.identity
	if info.InvocationWrapper != nil {
		info.wrapperClassName = prefix + "_InvokerWrapper_" + info.identity
	}
	return info
}

func (i *Info) Identity() string {
	return i.identity
}

// Name is the canonical name of the invoker callers see: the wrapper when
// one is configured, the pipeline otherwise.
func (i *Info) Name() string {
	if i.wrapperClassName != "" {
		return i.wrapperClassName
	}
	return i.className
}

func (i *Info) ClassName() string {
	return i.className
}

func (i *Info) WrapperClassName() string {
	return i.wrapperClassName
}

func (i *Info) InstanceLookup() bool {
	return i.instanceLookup
}

// ArgumentLookups reports, per parameter, whether the argument comes from
// the container. The result is a copy.
func (i *Info) ArgumentLookups() []bool {
	return slices.Clone(i.argumentLookups)
}

// ArgumentTransformers returns the transformer per parameter, nil where
// none is set. The result is a copy.
func (i *Info) ArgumentTransformers() []*Transformer {
	return slices.Clone(i.argumentTransformers)
}

func (i *Info) UsesLookup() bool {
	return i.instanceLookup || slices.Contains(i.argumentLookups, true)
}

func (i *Info) String() string {
	return i.BeanClass.Name + "#" + i.Method.Name
}

func declaringName(i *Info) string {
	if d := i.Method.DeclaringClass(); d != nil {
		return d.Name
	}
	return i.BeanClass.Name
}

func fingerprint(i *Info) string {
	var b strings.Builder
	b.WriteString(i.BeanClass.Name)
	b.WriteString(declaringName(i))
	b.WriteString(i.Method.Name)
	b.WriteString(strconv.FormatBool(i.Method.Static))
	b.WriteString(i.Method.ReturnType().String())
	for _, p := range i.Method.Params {
		b.WriteString(p.String())
	}
	b.WriteString(i.InstanceTransformer.String())
	b.WriteString(transformerList(i.argumentTransformers))
	b.WriteString(i.ReturnValueTransformer.String())
	b.WriteString(i.ExceptionTransformer.String())
	b.WriteString(i.InvocationWrapper.String())
	b.WriteString(strconv.FormatBool(i.instanceLookup))
	b.WriteString(lookupList(i.argumentLookups))

	sum := sha1.Sum([]byte(b.String())) //nolint:gosec // content fingerprint
	return hex.EncodeToString(sum[:])
}

func transformerList(ts []*Transformer) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func lookupList(ls []bool) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = strconv.FormatBool(l)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
