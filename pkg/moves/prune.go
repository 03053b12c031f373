package moves

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

// FixedHeightPruneRegraft moves a subtree to another lineage alive at the
// height of its parent. The target i is drawn uniformly from the nodes that
// are neither the root nor a child of the root, and the destination edge
// uniformly from RegraftCandidates.
//
// The reverse move regrafts onto the edge of i's original sibling, chosen
// from the candidate set of the edited tree. Both sets hold the lineages
// crossing the same height other than i's, so their sizes agree and the
// reported log ratio, log|forward| - log|reverse|, is 0. It is computed from
// the edited tree rather than assumed.
type FixedHeightPruneRegraft struct {
	operator.Base
	tree *tree.Tree
}

// NewFixedHeightPruneRegraft creates the move on tr.
func NewFixedHeightPruneRegraft(tr *tree.Tree, weight float64, opts ...Option) (*FixedHeightPruneRegraft, error) {
	op := &FixedHeightPruneRegraft{tree: tr}
	if err := setup(&op.Base, "fixedHeightSubtreePruneRegraft", tr, weight, opts); err != nil {
		return nil, err
	}
	return op, nil
}

// Propose implements operator.Proposer.
func (op *FixedHeightPruneRegraft) Propose(rng *rand.Rand) (operator.Result, error) {
	targets := pruneTargets(op.tree)
	if len(targets) == 0 {
		return operator.Rejection(), nil
	}
	i := pick(rng, targets)
	candidates := RegraftCandidates(op.tree, i)
	if len(candidates) == 0 {
		return operator.Rejection(), nil
	}
	return op.Regraft(i, pick(rng, candidates))
}

// Regraft applies the move of i onto the edge above j and returns its log
// Hastings ratio. j must be one of RegraftCandidates(tree, i).
func (op *FixedHeightPruneRegraft) Regraft(i, j *tree.Node) (operator.Result, error) {
	candidates := RegraftCandidates(op.tree, i)
	if !slices.Contains(candidates, j) {
		return operator.Rejection(), nil
	}
	forward := len(candidates)
	if err := regraft(op.tree, i, j); err != nil {
		return operator.Result{}, fatal(op.Name(), err)
	}
	reverse := len(RegraftCandidates(op.tree, i))
	if reverse == 0 {
		return operator.Result{}, fatal(op.Name(), fmt.Errorf("%w: regraft of node %d has no reverse move", operator.ErrInconsistentState, i.Index()))
	}
	return operator.Proposed(math.Log(float64(forward)) - math.Log(float64(reverse))), nil
}
