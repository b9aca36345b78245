package needle

import (
	"time"
)

// ResolveHook observes every bean instance obtained by the container,
// including lookups performed by generated invokers.
type ResolveHook func(key string, duration time.Duration, err error)

// InvokeHook observes every call of a generated invoker.
type InvokeHook func(name string, duration time.Duration, err error)

// GenerateHook observes invoker builds. cached is true when the build was
// served from the invoker cache.
type GenerateHook func(name string, cached bool)
