package continuous

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/ports"
)

// ZigZag advances a parameter with a native piecewise-deterministic sampler.
// Each proposal draws a fresh velocity of ±1 per dimension, reads the
// gradient, and makes one synchronous Advance call. The move is a Gibbs step:
// the chain accepts it without a Metropolis test.
type ZigZag struct {
	operator.Base
	param    *param.Parameter
	sampler  ports.ContinuousSampler
	gradient ports.GradientProvider

	pending  bool
	previous []float64
	velocity []float64
}

// NewZigZag creates the bridge operator.
func NewZigZag(p *param.Parameter, sampler ports.ContinuousSampler, gradient ports.GradientProvider, weight float64, opts ...Option) (*ZigZag, error) {
	op := &ZigZag{param: p, sampler: sampler, gradient: gradient}
	if err := setup(&op.Base, "zigZag", p, weight, opts); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, operator.Invalid(op.Name(), "sampler", "must not be nil", nil)
	}
	if gradient == nil {
		return nil, operator.Invalid(op.Name(), "gradient", "must not be nil", nil)
	}
	return op, nil
}

// Gibbs implements operator.Gibbs.
func (op *ZigZag) Gibbs() {}

// Velocity returns the velocity returned by the last Advance call.
func (op *ZigZag) Velocity() []float64 { return append([]float64(nil), op.velocity...) }

// Propose implements operator.Proposer.
func (op *ZigZag) Propose(rng *rand.Rand) (operator.Result, error) {
	op.pending = false
	dim := op.param.Dimension()
	position := op.param.Values()

	velocity := make([]float64, dim)
	for i := range velocity {
		velocity[i] = 1
		if rng.IntN(2) == 0 {
			velocity[i] = -1
		}
	}
	gradient, err := op.gradient.Gradient()
	if err != nil {
		return operator.Result{}, fmt.Errorf("%s: gradient: %w", op.Name(), err)
	}
	if len(gradient) != dim {
		return operator.Result{}, fmt.Errorf("%s: gradient has %d dimensions, want %d: %w", op.Name(), len(gradient), dim, operator.ErrInconsistentState)
	}

	next, nextVelocity, err := op.sampler.Advance(position, velocity, gradient)
	if err != nil {
		return operator.Result{}, fmt.Errorf("%s: sampler: %w", op.Name(), err)
	}
	if len(next) != dim {
		return operator.Result{}, fmt.Errorf("%s: sampler returned %d dimensions, want %d: %w", op.Name(), len(next), dim, operator.ErrInconsistentState)
	}
	for i, v := range next {
		if !op.param.InBounds(v) {
			return operator.Result{}, fmt.Errorf("%s: sampler left the support at dimension %d (%v): %w", op.Name(), i, v, operator.ErrInconsistentState)
		}
	}

	op.previous = position
	op.velocity = nextVelocity
	op.pending = true
	if err := op.param.SetValues(next); err != nil {
		return operator.Result{}, fmt.Errorf("%s: %w", op.Name(), err)
	}
	return operator.Proposed(0), nil
}

// Accept implements operator.Operator.
func (op *ZigZag) Accept(deviation float64) {
	op.pending = false
	op.Base.Accept(deviation)
}

// Reject implements operator.Operator.
func (op *ZigZag) Reject() {
	if op.pending {
		_ = op.param.SetValues(op.previous)
		op.pending = false
	}
	op.Base.Reject()
}
