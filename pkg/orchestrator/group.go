// Package orchestrator implements Component H: the single export(out_dir,
// filter?) entry point that fans export tokens out across a bounded
// worker pool, batches multithread-unsafe exporters onto one worker,
// deduplicates destinations, and runs the project reconstructor's
// postprocessing pass once every export has finished (spec.md §4.H).
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called once per completed task, in whatever order tasks
// finish (spec.md §5: "per-task progress callback").
type ProgressFunc func(done, total int)

// CancelLatch is the shared cooperative-cancellation flag every task
// consults at its suspension points (spec.md §5: "a shared boolean latch
// consulted at suspension points").
type CancelLatch struct {
	flag atomic.Bool
}

// Cancel raises the latch. Safe to call from any goroutine, any number of
// times.
func (c *CancelLatch) Cancel() { c.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (c *CancelLatch) Cancelled() bool { return c.flag.Load() }

// runGroup fans tasks out across at most limit concurrent goroutines via
// errgroup, the same bounded-worker-pool shape golang.org/x/sync/errgroup
// gives any Go program that needs one. A single-threaded exporter group
// sets limit to 1, turning the same code path into the sequential loop
// spec.md §4.H asks for ("dispatch a work-stealing pool for the former
// and a sequential loop for the latter") without a second implementation.
//
// Tasks are expected to convert their own failures into whatever report
// shape the caller collects and return nil; runGroup only propagates a
// panic recovered from a task, so one runaway task cannot take down
// goroutines still in flight (spec.md §5: "an exception/panic in one
// task must not poison the pool").
func runGroup(ctx context.Context, limit int, tasks []func(context.Context) error, progress ProgressFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var done int64
	total := len(tasks)
	for _, task := range tasks {
		task := task
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("export task panicked: %v", r)
				}
				if progress != nil {
					progress(int(atomic.AddInt64(&done, 1)), total)
				}
			}()
			return task(gctx)
		})
	}
	return g.Wait()
}
