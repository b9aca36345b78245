package needle

import (
	"context"

	"github.com/danpasecinic/needle-invoke/internal/container"
	"github.com/danpasecinic/needle-invoke/internal/scope"
)

type Scope = scope.Scope

const (
	Singleton = scope.Singleton
	Dependent = scope.Dependent
	Request   = scope.Request
)

// WithRequestScope returns a context holding a fresh request scope. Beans
// with the Request scope are shared by every lookup made with it.
func WithRequestScope(ctx context.Context) context.Context {
	return container.WithRequestScope(ctx)
}
