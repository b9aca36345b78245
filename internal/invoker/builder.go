package invoker

import (
	"github.com/danpasecinic/needle-invoke/internal/errs"
	"github.com/danpasecinic/needle-invoke/types"
)

// Builder shapes the configuration of one invoker. Setters record the first
// misuse; Build reports it.
type Builder struct {
	beanClass  *types.ClassInfo
	method     *types.MethodInfo
	afterBuilt func(*Info) error

	instanceLookup  bool
	argumentLookups []bool

	instanceTransformer    *Transformer
	argumentTransformers   []*Transformer
	returnValueTransformer *Transformer
	exceptionTransformer   *Transformer
	invocationWrapper      *Transformer

	err   error
	built *Info
}

func NewBuilder(beanClass *types.ClassInfo, method *types.MethodInfo, afterBuilt func(*Info) error) *Builder {
	return &Builder{
		beanClass:            beanClass,
		method:               method,
		afterBuilt:           afterBuilt,
		argumentLookups:      make([]bool, method.ParamCount()),
		argumentTransformers: make([]*Transformer, method.ParamCount()),
	}
}

func (b *Builder) SetInstanceLookup() *Builder {
	if b.check() {
		b.instanceLookup = true
	}
	return b
}

func (b *Builder) SetArgumentLookup(position int) *Builder {
	if b.check() && b.checkPosition(position) {
		b.argumentLookups[position] = true
	}
	return b
}

func (b *Builder) SetInstanceTransformer(owner, method string) *Builder {
	b.set(&b.instanceTransformer, &Transformer{Kind: KindInstance, Owner: owner, Method: method})
	return b
}

func (b *Builder) SetArgumentTransformer(position int, owner, method string) *Builder {
	if b.check() && b.checkPosition(position) {
		b.set(&b.argumentTransformers[position], &Transformer{Kind: KindArgument, Owner: owner, Method: method})
	}
	return b
}

func (b *Builder) SetReturnValueTransformer(owner, method string) *Builder {
	b.set(&b.returnValueTransformer, &Transformer{Kind: KindReturnValue, Owner: owner, Method: method})
	return b
}

// SetReturnValueTransformerType configures a stateful return value
// transformer. owner must be constructible and implement ValueTransformer.
func (b *Builder) SetReturnValueTransformerType(owner string) *Builder {
	b.set(&b.returnValueTransformer, &Transformer{Kind: KindReturnValue, Owner: owner})
	return b
}

func (b *Builder) SetExceptionTransformer(owner, method string) *Builder {
	b.set(&b.exceptionTransformer, &Transformer{Kind: KindException, Owner: owner, Method: method})
	return b
}

func (b *Builder) SetInvocationWrapper(owner, method string) *Builder {
	b.set(&b.invocationWrapper, &Transformer{Kind: KindWrapper, Owner: owner, Method: method})
	return b
}

func (b *Builder) Err() error {
	return b.err
}

// Build freezes the configuration and computes its identity. Later calls
// return the same descriptor.
func (b *Builder) Build() (*Info, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built != nil {
		return b.built, nil
	}

	info := newInfo(b)
	if b.afterBuilt != nil {
		if err := b.afterBuilt(info); err != nil {
			return nil, err
		}
	}
	b.built = info
	return info, nil
}

func (b *Builder) set(slot **Transformer, t *Transformer) {
	if !b.check() {
		return
	}
	if *slot != nil {
		b.fail(errs.Newf(errs.CodeAlreadySet, "%s already set to %s", t.Kind, *slot).WithService(b.target()))
		return
	}
	*slot = t
}

func (b *Builder) check() bool {
	if b.err != nil {
		return false
	}
	if b.built != nil {
		b.fail(errs.Newf(errs.CodeAlreadyBuilt, "invoker already built").WithService(b.target()))
		return false
	}
	return true
}

func (b *Builder) checkPosition(position int) bool {
	if position < 0 || position >= len(b.argumentLookups) {
		b.fail(errs.Newf(
			errs.CodeArgumentOutOfRange,
			"position %d out of range, method has %d parameters",
			position, len(b.argumentLookups),
		).WithService(b.target()))
		return false
	}
	return true
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) target() string {
	return b.beanClass.Name + "#" + b.method.Name
}
