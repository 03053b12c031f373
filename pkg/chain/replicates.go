package chain

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunAll runs n steps of every chain in its own goroutine. Chains must not
// share trees, parameters, schedules or operators. The first failure cancels
// the others and is returned.
func RunAll(ctx context.Context, n uint64, chains ...*Chain) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range chains {
		g.Go(func() error {
			if err := c.Run(ctx, n); err != nil {
				return fmt.Errorf("chain %s: %w", c.ID(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Seed derives the seed of replicate i from a base seed, so that replicates
// draw independent streams.
func Seed(base uint64, i int) uint64 {
	// SplitMix64 finaliser.
	z := base + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
