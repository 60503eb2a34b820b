package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelFor calls fn for every i in [0, n) on at most workers goroutines.
// With workers <= 1 the calls run in order on the caller's goroutine. The
// first error cancels the remaining iterations and is returned.
func ParallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
