package hash

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runBounded runs fn(i) for every i in [0, n) with at most limit
// concurrent calls, returning the first error encountered (subsequent
// in-flight calls are cancelled via the derived context). Mirrors
// akashi's BackfillScoring worker-pool shape.
func runBounded(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			return fn(gCtx, i)
		})
	}
	return g.Wait()
}
