package ports

// ContinuousSampler is the bridge to a native piecewise-deterministic or
// Hamiltonian integrator. It receives full position, velocity and gradient
// vectors and returns the updated position and velocity. Calls are
// synchronous and may be long-running; no concurrency guarantee is implied.
type ContinuousSampler interface {
	Advance(position, velocity, gradient []float64) (newPosition, newVelocity []float64, err error)
}

// GradientProvider supplies the gradient of the log density with respect to
// the sampled parameter.
type GradientProvider interface {
	Gradient() ([]float64, error)
}
