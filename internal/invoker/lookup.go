package invoker

import (
	"context"

	"github.com/danpasecinic/needle-invoke/types"
)

// Lookup binds a type and qualifiers to exactly one dependency. It is
// consulted while an invoker is generated; a failure prevents the invoker
// from being built.
type Lookup interface {
	Resolve(t types.Type, qualifiers []string) (Dependency, error)
}

// Dependency produces instances of a bound dependency at call time.
// Instance creation may block; implementations must be safe for concurrent
// use.
type Dependency interface {
	Handle(ctx context.Context) (DependencyHandle, error)
	String() string
}

// DependencyHandle is a resolved value. Handles of per-use scopes carry a
// release obligation; shared ones do not.
type DependencyHandle interface {
	Get() any
	Releasable() bool
	Release() error
}
