package moves

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/ports"
)

// TipSwap exchanges the observed state vectors of two tips in every view of
// the tip data. Views describe the same tips and must agree; a disagreement
// is reported as operator.ErrInconsistentState.
//
// Tip data has no generic undo, so both vectors are cached by Propose and
// written back by Reject.
type TipSwap struct {
	operator.Base
	views []ports.TipStates

	pending bool
	i, j    int
	si, sj  []int
}

// NewTipSwap creates a swap over one or more views with equal tip counts.
func NewTipSwap(weight float64, views []ports.TipStates, opts ...Option) (*TipSwap, error) {
	c := config{name: "tipSwap"}
	for _, opt := range opts {
		opt(&c)
	}
	op := &TipSwap{views: slices.Clone(views)}
	if err := op.Init(c.name, weight); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, operator.Invalid(c.name, "views", "at least one tip-state view is required", nil)
	}
	n := views[0].TipCount()
	for k, v := range views[1:] {
		if v.TipCount() != n {
			return nil, operator.Invalid(c.name, fmt.Sprintf("views[%d]", k+1), "tip count differs from views[0]", v.TipCount())
		}
	}
	return op, nil
}

// Propose implements operator.Proposer.
func (op *TipSwap) Propose(rng *rand.Rand) (operator.Result, error) {
	op.pending = false
	n := op.views[0].TipCount()
	if n < 2 {
		return operator.Rejection(), nil
	}
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}

	si, err := op.state(i)
	if err != nil {
		return operator.Result{}, err
	}
	sj, err := op.state(j)
	if err != nil {
		return operator.Result{}, err
	}
	if slices.Equal(si, sj) {
		return operator.Rejection(), nil
	}

	op.pending = true
	op.i, op.j, op.si, op.sj = i, j, si, sj
	for _, v := range op.views {
		v.SetState(i, sj)
		v.SetState(j, si)
	}
	return operator.Proposed(0), nil
}

// state reads tip from every view and checks they agree.
func (op *TipSwap) state(tip int) ([]int, error) {
	s := op.views[0].State(tip)
	for k, v := range op.views[1:] {
		if other := v.State(tip); !slices.Equal(s, other) {
			return nil, fmt.Errorf("%s: tip %d: views[0] has %v, views[%d] has %v: %w",
				op.Name(), tip, s, k+1, other, operator.ErrInconsistentState)
		}
	}
	return s, nil
}

// Accept implements operator.Operator.
func (op *TipSwap) Accept(deviation float64) {
	op.pending = false
	op.Base.Accept(deviation)
}

// Reject writes the cached vectors back before counting the rejection.
func (op *TipSwap) Reject() {
	if op.pending {
		for _, v := range op.views {
			v.SetState(op.i, op.si)
			v.SetState(op.j, op.sj)
		}
		op.pending = false
	}
	op.Base.Reject()
}
