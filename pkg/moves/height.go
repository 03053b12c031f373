package moves

import (
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

// UniformHeight resamples the height of an internal non-root node uniformly
// between its oldest child and its parent. The log Hastings ratio is 0.
type UniformHeight struct {
	operator.Base
	tree *tree.Tree
}

// NewUniformHeight creates the move on tr.
func NewUniformHeight(tr *tree.Tree, weight float64, opts ...Option) (*UniformHeight, error) {
	op := &UniformHeight{tree: tr}
	if err := setup(&op.Base, "uniformHeight", tr, weight, opts); err != nil {
		return nil, err
	}
	return op, nil
}

// Propose implements operator.Proposer.
func (op *UniformHeight) Propose(rng *rand.Rand) (operator.Result, error) {
	// Internal nodes other than the root.
	n := op.tree.InternalCount() - 1
	if n < 1 {
		return operator.Rejection(), nil
	}
	k := rng.IntN(n)
	node := op.tree.Internal(k)
	if node.IsRoot() {
		node = op.tree.Internal(n)
	}

	lower := max(node.Child(0).Height(), node.Child(1).Height())
	upper := node.Parent().Height()
	if !(lower < upper) {
		return operator.Rejection(), nil
	}

	h := lower + rng.Float64()*(upper-lower)
	if !(h > lower && h < upper) {
		return operator.Rejection(), nil
	}
	if err := op.tree.SetHeight(node, h); err != nil {
		return operator.Result{}, fatal(op.Name(), err)
	}
	return operator.Proposed(0), nil
}
