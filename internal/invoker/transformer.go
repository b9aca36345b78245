package invoker

type Kind int

const (
	KindWrapper Kind = iota
	KindInstance
	KindArgument
	KindReturnValue
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindWrapper:
		return "invocation wrapper"
	case KindInstance:
		return "target instance transformer"
	case KindArgument:
		return "argument transformer"
	case KindReturnValue:
		return "return value transformer"
	case KindException:
		return "exception transformer"
	default:
		return "unknown transformer"
	}
}

// Transformer references the class and method that adapt one value of an
// invocation. An empty Method selects the stateful variant: the owner is
// instantiated once per invoker and must implement ValueTransformer.
type Transformer struct {
	Kind   Kind
	Owner  string
	Method string
}

func (t *Transformer) String() string {
	if t == nil {
		return "null"
	}
	if t.Method == "" {
		return t.Kind.String() + " " + t.Owner
	}
	return t.Kind.String() + " " + t.Owner + "#" + t.Method
}

func (t *Transformer) IsInput() bool {
	return t.Kind == KindInstance || t.Kind == KindArgument
}

func (t *Transformer) IsOutput() bool {
	return t.Kind == KindReturnValue || t.Kind == KindException
}

func (t *Transformer) Stateful() bool {
	return t.Method == ""
}

// ValueTransformer is implemented by instances of stateful transformer
// classes. Implementations are shared by all invocations of an invoker.
type ValueTransformer interface {
	Transform(value any) (any, error)
}
