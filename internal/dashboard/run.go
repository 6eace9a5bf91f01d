package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes tasks concurrently and applies each result on the calling
// goroutine as it arrives, then does the same for any follow-up tasks. It
// returns once nothing is left to run, or with ctx's error once ctx ends.
// Results that finish after cancellation are discarded.
func Run(ctx context.Context, ctrl *Controller, tasks []Task) error {
	for len(tasks) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		results := make(chan Result, len(tasks))
		g, gctx := errgroup.WithContext(ctx)
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				results <- task.Run(gctx)
				return ctx.Err()
			})
		}
		var waitErr error
		go func() {
			waitErr = g.Wait()
			close(results)
		}()

		var next []Task
		for r := range results {
			if ctx.Err() != nil {
				continue
			}
			next = append(next, ctrl.Apply(r)...)
		}
		if waitErr != nil {
			return waitErr
		}
		tasks = next
	}
	return nil
}
