package scope

type Scope int

const (
	Singleton Scope = iota
	Dependent
	Request
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Dependent:
		return "dependent"
	case Request:
		return "request"
	default:
		return "unknown"
	}
}

// Shared reports whether instances of the scope outlive a single use.
func (s Scope) Shared() bool {
	return s != Dependent
}
