package moves

import (
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

// NarrowExchange swaps a node with its uncle. The node is drawn uniformly
// from the nodes that have a grandparent, a set whose size depends only on
// the tip count, and the draw is rejected unless the uncle is younger than
// the node's parent. The move is its own reverse, so the log Hastings ratio
// is 0.
type NarrowExchange struct {
	operator.Base
	tree *tree.Tree
}

// NewNarrowExchange creates a narrow exchange on tr.
func NewNarrowExchange(tr *tree.Tree, weight float64, opts ...Option) (*NarrowExchange, error) {
	op := &NarrowExchange{tree: tr}
	if err := setup(&op.Base, "narrowExchange", tr, weight, opts); err != nil {
		return nil, err
	}
	return op, nil
}

// Propose implements operator.Proposer.
func (op *NarrowExchange) Propose(rng *rand.Rand) (operator.Result, error) {
	targets := pruneTargets(op.tree)
	if len(targets) == 0 {
		return operator.Rejection(), nil
	}
	i := pick(rng, targets)
	p := i.Parent()
	uncle := p.Sibling()
	if !(uncle.Height() < p.Height()) {
		return operator.Rejection(), nil
	}
	if err := exchange(op.tree, i, uncle); err != nil {
		return operator.Result{}, fatal(op.Name(), err)
	}
	return operator.Proposed(0), nil
}

// WideExchange swaps two arbitrary subtrees. An ordered pair of distinct
// non-root nodes is drawn uniformly and the draw is rejected when the swap
// would be illegal. The log Hastings ratio is 0.
type WideExchange struct {
	operator.Base
	tree *tree.Tree
}

// NewWideExchange creates a wide exchange on tr.
func NewWideExchange(tr *tree.Tree, weight float64, opts ...Option) (*WideExchange, error) {
	op := &WideExchange{tree: tr}
	if err := setup(&op.Base, "wideExchange", tr, weight, opts); err != nil {
		return nil, err
	}
	return op, nil
}

// Propose implements operator.Proposer.
func (op *WideExchange) Propose(rng *rand.Rand) (operator.Result, error) {
	// Non-root nodes are every node but one.
	n := op.tree.NodeCount() - 1
	if n < 2 {
		return operator.Rejection(), nil
	}
	a := rng.IntN(n)
	b := rng.IntN(n - 1)
	if b >= a {
		b++
	}
	i, j := op.nonRoot(a), op.nonRoot(b)
	if !op.swappable(i, j) {
		return operator.Rejection(), nil
	}
	if err := exchange(op.tree, i, j); err != nil {
		return operator.Result{}, fatal(op.Name(), err)
	}
	return operator.Proposed(0), nil
}

// nonRoot maps 0..NodeCount-2 onto the nodes other than the root.
func (op *WideExchange) nonRoot(k int) *tree.Node {
	if k >= op.tree.Root().Index() {
		k++
	}
	return op.tree.Node(k)
}

func (op *WideExchange) swappable(i, j *tree.Node) bool {
	pi, pj := i.Parent(), j.Parent()
	if pi == pj || pi == j || pj == i {
		return false
	}
	if op.tree.IsAncestor(i, j) || op.tree.IsAncestor(j, i) {
		return false
	}
	return j.Height() < pi.Height() && i.Height() < pj.Height()
}
