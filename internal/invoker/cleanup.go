package invoker

import (
	"fmt"
	"log/slog"
)

// Cleanup registers a release action to run when the current invocation
// finishes. A nil action is ignored.
type Cleanup func(release func())

// Tracker collects release actions and dependency handles for exactly one
// invocation. It is not safe for concurrent use and is never shared.
type Tracker struct {
	logger   *slog.Logger
	tasks    []func()
	handles  []DependencyHandle
	finished bool
}

func newTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

func (t *Tracker) Add(release func()) {
	if release != nil {
		t.tasks = append(t.tasks, release)
	}
}

func (t *Tracker) AddHandle(h DependencyHandle) {
	t.handles = append(t.handles, h)
}

func (t *Tracker) Pending() int {
	return len(t.tasks) + len(t.handles)
}

// Finish runs release actions, then releases dependency handles, each in
// registration order. It never fails: errors and panics of individual
// entries are logged and the remaining entries still run.
func (t *Tracker) Finish() {
	if t.finished {
		return
	}
	t.finished = true

	for _, task := range t.tasks {
		if err := runTask(task); err != nil {
			t.logger.Warn("invoker cleanup task failed", "error", err)
		}
	}
	t.tasks = nil

	for _, h := range t.handles {
		if err := releaseHandle(h); err != nil {
			t.logger.Warn("invoker dependency release failed", "error", err)
		}
	}
	t.handles = nil
}

func runTask(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	task()
	return nil
}

func releaseHandle(h DependencyHandle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Release()
}
