// Package tasks provides the fire-and-forget background scheduler used by
// the webhook pipeline.
//
// Work items are submitted after classification and run concurrently with no
// ordering guarantee and no external cancellation; the webhook response never
// waits for them. Panics inside a work item are recovered and logged so a
// single bad event cannot take the process down.
package tasks

import (
	"context"
	"log/slog"
	"sync"
)

// Runner schedules background work items.
type Runner struct {
	wg sync.WaitGroup
}

// NewRunner creates a task runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Submit schedules fn to run concurrently and returns immediately.
func (r *Runner) Submit(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Runner.Submit: recovered panic in work item", "panic", rec)
			}
		}()
		fn(context.Background())
	}()
}

// Wait blocks until all submitted work items have completed. Used by tests
// and graceful shutdown; normal request handling never calls it.
func (r *Runner) Wait() {
	r.wg.Wait()
}
