package continuous

import (
	"math"
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
)

// RandomWalk adds U(-w, w) to one randomly chosen dimension. Proposals outside
// the parameter bounds are rejected. The window is tuned and stored as log(w).
type RandomWalk struct {
	operator.Base
	param  *param.Parameter
	tuning operator.AtomicFloat64
	undo   undo
}

// NewRandomWalk creates a random walk on p with window w > 0.
func NewRandomWalk(p *param.Parameter, weight, window float64, opts ...Option) (*RandomWalk, error) {
	op := &RandomWalk{param: p}
	if err := setup(&op.Base, "randomWalk", p, weight, opts); err != nil {
		return nil, err
	}
	if !(window > 0) || math.IsInf(window, 0) {
		return nil, operator.Invalid(op.Name(), "window", "must be finite and positive", window)
	}
	op.tuning.Store(math.Log(window))
	return op, nil
}

// Propose implements operator.Proposer.
func (op *RandomWalk) Propose(rng *rand.Rand) (operator.Result, error) {
	op.undo.pending = false
	w := op.RawParameter()
	i := rng.IntN(op.param.Dimension())
	v := op.param.Value(i) + (2*rng.Float64()-1)*w
	if !op.param.InBounds(v) {
		return operator.Rejection(), nil
	}
	op.undo.save(op.param, i)
	op.param.SetValue(i, v)
	return operator.Proposed(0), nil
}

// Accept implements operator.Operator.
func (op *RandomWalk) Accept(deviation float64) {
	op.undo.pending = false
	op.Base.Accept(deviation)
}

// Reject implements operator.Operator.
func (op *RandomWalk) Reject() {
	op.undo.restore(op.param)
	op.Base.Reject()
}

// AdaptableParameter returns log(w).
func (op *RandomWalk) AdaptableParameter() float64 { return op.tuning.Load() }

// SetAdaptableParameter sets w = exp(v).
func (op *RandomWalk) SetAdaptableParameter(v float64) { op.tuning.Store(v) }

// RawParameter returns the window size.
func (op *RandomWalk) RawParameter() float64 { return math.Exp(op.tuning.Load()) }

// AdaptableParameterName implements operator.Tunable.
func (op *RandomWalk) AdaptableParameterName() string { return "windowSize" }
