package ports

import "context"

// Density evaluates the log posterior density of the current model state.
// It is called by the chain after every feasible proposal.
type Density interface {
	LogDensity(ctx context.Context) (float64, error)
}

// DensityFunc adapts a function to the Density interface.
type DensityFunc func(ctx context.Context) (float64, error)

// LogDensity calls f(ctx).
func (f DensityFunc) LogDensity(ctx context.Context) (float64, error) {
	return f(ctx)
}
