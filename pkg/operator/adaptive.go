package operator

import (
	"math"
	"sync"
	"sync/atomic"
)

// Adaptive wraps a Tunable with a Robbins–Monro controller. After every
// completed proposal of the operator the driver calls RecordOutcome, which
// moves the transformed tuning value by (accepted - target) * step(n).
//
// RecordOutcome has a single writer (the chain goroutine). AdaptationCount,
// AdaptableParameter and the Stats may be read from any goroutine.
type Adaptive struct {
	Tunable

	target  float64
	step    StepSchedule
	delay   uint64
	enabled bool

	mu    sync.Mutex
	count atomic.Uint64
}

// AdaptiveOption configures an Adaptive controller.
type AdaptiveOption func(*Adaptive)

// WithTarget sets the target acceptance probability, in (0, 1).
func WithTarget(t float64) AdaptiveOption {
	return func(a *Adaptive) { a.target = t }
}

// WithStep replaces the default harmonic step schedule.
func WithStep(s StepSchedule) AdaptiveOption {
	return func(a *Adaptive) { a.step = s }
}

// WithDelay skips tuning for the first n outcomes. They are still counted.
func WithDelay(n uint64) AdaptiveOption {
	return func(a *Adaptive) { a.delay = n }
}

// WithAdaptation enables or disables tuning. A disabled controller still
// counts outcomes.
func WithAdaptation(enabled bool) AdaptiveOption {
	return func(a *Adaptive) { a.enabled = enabled }
}

// NewAdaptive wraps op.
func NewAdaptive(op Tunable, opts ...AdaptiveOption) (*Adaptive, error) {
	if op == nil {
		return nil, Invalid("adaptive", "operator", "must not be nil", nil)
	}
	a := &Adaptive{
		Tunable: op,
		target:  DefaultTarget,
		step:    Harmonic{},
		enabled: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if !(a.target > 0 && a.target < 1) {
		return nil, Invalid(op.Name(), "target", "must be in (0, 1)", a.target)
	}
	if a.step == nil {
		return nil, Invalid(op.Name(), "step", "must not be nil", nil)
	}
	return a, nil
}

// RecordOutcome counts one outcome and, past the delay, updates the tuning.
func (a *Adaptive) RecordOutcome(accepted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.count.Add(1)
	if !a.enabled || n <= a.delay {
		return
	}
	var x float64
	if accepted {
		x = 1
	}
	v := a.Tunable.AdaptableParameter() + (x-a.target)*a.step.Step(n-a.delay)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	a.Tunable.SetAdaptableParameter(v)
}

// SetAdaptableParameter sets the transformed value, serialised with updates.
func (a *Adaptive) SetAdaptableParameter(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Tunable.SetAdaptableParameter(v)
}

// AdaptationCount returns the number of recorded outcomes.
func (a *Adaptive) AdaptationCount() uint64 { return a.count.Load() }

// SetAdaptationCount restores the counter from a checkpoint.
func (a *Adaptive) SetAdaptationCount(n uint64) { a.count.Store(n) }

// TargetAcceptance returns the target acceptance probability.
func (a *Adaptive) TargetAcceptance() float64 { return a.target }

// Unwrap returns the tuned operator.
func (a *Adaptive) Unwrap() Tunable { return a.Tunable }

var _ AdaptiveOperator = (*Adaptive)(nil)
