package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs n independent tasks and returns once all of them have
// finished. The return is the barrier: every write a task made happens
// before Run returns.
type Scheduler interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

// Parallel runs each task on its own goroutine. Limit > 0 caps the number
// running at once.
type Parallel struct {
	Limit int
}

// Run implements Scheduler. The first error cancels the context handed to
// tasks that have not started yet.
func (p Parallel) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	return g.Wait()
}

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Scheduler.
func (Sequential) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		i := i
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// SchedulerByName resolves "parallel" (or "") and "sequential".
func SchedulerByName(name string) (Scheduler, error) {
	switch name {
	case "", "parallel":
		return Parallel{}, nil
	case "sequential":
		return Sequential{}, nil
	default:
		return nil, fmt.Errorf("engine: unknown scheduler %q (use parallel or sequential)", name)
	}
}
