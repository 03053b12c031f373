package continuous

import (
	"math"
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
)

// Scale multiplies one randomly chosen dimension by u ~ U(s, 1/s), where s in
// (0, 1) is the scale factor. The log Hastings ratio is -log u. The factor is
// tuned on the real line through v = log(1/s - 1), and v is what is stored.
type Scale struct {
	operator.Base
	param  *param.Parameter
	tuning operator.AtomicFloat64
	undo   undo
}

// NewScale creates a scale operator on p.
func NewScale(p *param.Parameter, weight, factor float64, opts ...Option) (*Scale, error) {
	op := &Scale{param: p}
	if err := setup(&op.Base, "scale", p, weight, opts); err != nil {
		return nil, err
	}
	if !(factor > 0 && factor < 1) {
		return nil, operator.Invalid(op.Name(), "factor", "must be in (0, 1)", factor)
	}
	op.tuning.Store(math.Log(1/factor - 1))
	return op, nil
}

// Propose implements operator.Proposer.
func (op *Scale) Propose(rng *rand.Rand) (operator.Result, error) {
	op.undo.pending = false
	s := op.RawParameter()
	u := s + rng.Float64()*(1/s-s)

	i := rng.IntN(op.param.Dimension())
	v := op.param.Value(i) * u
	if !op.param.InBounds(v) {
		return operator.Rejection(), nil
	}
	op.undo.save(op.param, i)
	op.param.SetValue(i, v)
	return operator.Proposed(-math.Log(u)), nil
}

// Accept implements operator.Operator.
func (op *Scale) Accept(deviation float64) {
	op.undo.pending = false
	op.Base.Accept(deviation)
}

// Reject implements operator.Operator.
func (op *Scale) Reject() {
	op.undo.restore(op.param)
	op.Base.Reject()
}

// AdaptableParameter returns log(1/s - 1).
func (op *Scale) AdaptableParameter() float64 { return op.tuning.Load() }

// SetAdaptableParameter sets s = 1/(exp(v) + 1).
func (op *Scale) SetAdaptableParameter(v float64) { op.tuning.Store(v) }

// RawParameter returns the scale factor 1/(exp(v) + 1).
func (op *Scale) RawParameter() float64 { return 1 / (math.Exp(op.tuning.Load()) + 1) }

// AdaptableParameterName implements operator.Tunable.
func (op *Scale) AdaptableParameterName() string { return "scaleFactor" }

// NarrowsWithRaw implements operator.Narrowing: factors closer to 1 propose
// smaller changes.
func (op *Scale) NarrowsWithRaw() bool { return true }
