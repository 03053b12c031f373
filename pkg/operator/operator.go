package operator

import (
	"math"
	"math/rand/v2"
)

// Proposer is the minimal capability of a move.
type Proposer interface {
	Name() string
	// Propose perturbs the model in place. A nil error with Result.Rejected
	// means nothing changed. A non-nil error is fatal for the chain.
	Propose(rng *rand.Rand) (Result, error)
}

// Operator is a Proposer the schedule can weight and the driver can inform
// about the outcome of its proposals.
type Operator interface {
	Proposer
	Weight() float64
	// Accept is called after a Metropolis acceptance with a deviation metric
	// (typically the change in log density).
	Accept(deviation float64)
	// Reject is called after a Metropolis rejection, after the driver
	// restored the model state.
	Reject()
	Stats() *Stats
}

// Tunable is an Operator whose step size can be tuned through a single
// unconstrained real, the adaptable parameter.
type Tunable interface {
	Operator
	// AdaptableParameter returns the transformed tuning value.
	AdaptableParameter() float64
	// SetAdaptableParameter sets the transformed tuning value.
	SetAdaptableParameter(v float64)
	// RawParameter returns the tuning value on its natural scale.
	RawParameter() float64
	// AdaptableParameterName names the tuning value for diagnostics.
	AdaptableParameterName() string
}

// Narrowing is implemented by tunables whose proposals get narrower as the
// raw tuning value grows, such as a scale factor. Tunables without it are
// assumed to take bigger steps for bigger raw values.
type Narrowing interface {
	NarrowsWithRaw() bool
}

// narrows reports whether t, or the tunable it wraps, is Narrowing.
func narrows(t Tunable) bool {
	for {
		if n, ok := t.(Narrowing); ok {
			return n.NarrowsWithRaw()
		}
		u, ok := t.(interface{ Unwrap() Tunable })
		if !ok {
			return false
		}
		t = u.Unwrap()
	}
}

// Gibbs marks operators whose proposals are always accepted by the driver.
type Gibbs interface {
	Operator
	Gibbs()
}

// AdaptiveOperator is a Tunable whose tuning follows the acceptance history.
type AdaptiveOperator interface {
	Tunable
	RecordOutcome(accepted bool)
	AdaptationCount() uint64
	TargetAcceptance() float64
}

// Base carries the name, weight and counters shared by every operator.
// Operators embed it and call Init from their constructor.
type Base struct {
	name   string
	weight AtomicFloat64
	stats  Stats
}

// Init sets the name and weight. The weight must be finite and positive.
func (b *Base) Init(name string, weight float64) error {
	if name == "" {
		return Invalid("operator", "name", "must not be empty", nil)
	}
	if !(weight > 0) || math.IsInf(weight, 0) {
		return Invalid(name, "weight", "must be finite and positive", weight)
	}
	b.name = name
	b.weight.Store(weight)
	return nil
}

// Name returns the operator name.
func (b *Base) Name() string { return b.name }

// Weight returns the selection weight.
func (b *Base) Weight() float64 { return b.weight.Load() }

// SetWeight changes the selection weight. Schedules read it when they are
// rebuilt, see Schedule.SetWeight.
func (b *Base) SetWeight(w float64) { b.weight.Store(w) }

// Accept records an acceptance.
func (b *Base) Accept(deviation float64) { b.stats.RecordAccept(deviation) }

// Reject records a rejection.
func (b *Base) Reject() { b.stats.RecordReject() }

// Stats returns the counters.
func (b *Base) Stats() *Stats { return &b.stats }
