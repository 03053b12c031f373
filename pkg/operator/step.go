package operator

import "math"

// StepSchedule gives the Robbins–Monro step size for the n-th update, n >= 1.
// A schedule with sum(step) = Inf and sum(step^2) < Inf guarantees
// convergence of the stochastic approximation.
type StepSchedule interface {
	Step(n uint64) float64
}

// Harmonic is the 1/n schedule.
type Harmonic struct{}

// Step returns 1/n.
func (Harmonic) Step(n uint64) float64 {
	if n == 0 {
		return 1
	}
	return 1 / float64(n)
}

// Power is the min(Max, n^-Kappa) schedule. Kappa in (0.5, 1] satisfies both
// convergence conditions.
type Power struct {
	Kappa float64
	Max   float64
}

// Step returns min(Max, n^-Kappa).
func (p Power) Step(n uint64) float64 {
	if n == 0 {
		n = 1
	}
	return math.Min(p.Max, math.Pow(float64(n), -p.Kappa))
}

// CappedInverseSqrt is the classical min(0.01, n^-0.5) schedule. It only
// guarantees diminishing adaptation, since sum(step^2) diverges.
type CappedInverseSqrt struct{}

// Step returns min(0.01, 1/sqrt(n)).
func (CappedInverseSqrt) Step(n uint64) float64 {
	return Power{Kappa: 0.5, Max: 0.01}.Step(n)
}
