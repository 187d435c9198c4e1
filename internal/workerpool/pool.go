// Package workerpool runs independent per-item tasks on a statically bounded
// number of goroutines and hands back one result-or-error per item.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one task. Index is the position of the item in the
// slice passed to Run, so results can be matched to inputs regardless of the
// order in which tasks finished.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// DefaultWorkers returns the pool size used when the caller passes 0:
// twice the number of CPUs, since tasks mostly wait on file I/O.
func DefaultWorkers() int {
	return 2 * runtime.NumCPU()
}

// Run calls fn for every item with at most workers tasks in flight and
// blocks until all of them returned.
//
// Behavior:
//   - workers <= 0 falls back to DefaultWorkers().
//   - A failing or panicking task never cancels its siblings; its error is
//     stored in its own Result.
//   - The returned slice has len(items) entries, ordered by Index.
func Run[I, O any](ctx context.Context, workers int, items []I, fn func(context.Context, I) (O, error)) []Result[O] {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]Result[O], len(items))

	// Plain Group: tasks report through results, so g.Wait never sees an error.
	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = call(ctx, i, item, fn)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func call[I, O any](ctx context.Context, idx int, item I, fn func(context.Context, I) (O, error)) (res Result[O]) {
	res.Index = idx
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %d panicked: %v\n%s", idx, r, debug.Stack())
		}
	}()
	res.Value, res.Err = fn(ctx, item)
	return res
}
