package operator

import "math"

// Result is the outcome of a proposal that did not fail fatally.
type Result struct {
	// LogHastingsRatio is log q(x|x') - log q(x'|x) for the applied move.
	LogHastingsRatio float64
	// Rejected marks a structurally infeasible proposal. The model state is
	// untouched and the caller treats it as a Metropolis rejection.
	Rejected bool
}

// Proposed returns the result of an applied move.
func Proposed(logHastingsRatio float64) Result {
	return Result{LogHastingsRatio: logHastingsRatio}
}

// Rejection returns the result of an infeasible move.
func Rejection() Result {
	return Result{Rejected: true}
}

// LogRatio returns the log Hastings ratio, or -Inf for a rejection.
func (r Result) LogRatio() float64 {
	if r.Rejected {
		return math.Inf(-1)
	}
	return r.LogHastingsRatio
}
