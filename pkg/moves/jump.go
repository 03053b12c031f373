package moves

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

// SubtreeJump is a fixed-height prune-regraft whose destination favours
// nearby lineages. Destination j is drawn with probability proportional to
// exp(-d_j / size), where d_j is the height of the MRCA of i and j above the
// height of i's parent. Larger sizes give longer jumps.
//
// The log Hastings ratio is log p_reverse(original sibling) - log p_forward(j),
// with the reverse distribution computed on the edited tree.
type SubtreeJump struct {
	operator.Base
	tree    *tree.Tree
	logSize operator.AtomicFloat64
}

// NewSubtreeJump creates the move on tr with the given initial size.
func NewSubtreeJump(tr *tree.Tree, weight, size float64, opts ...Option) (*SubtreeJump, error) {
	op := &SubtreeJump{tree: tr}
	if err := setup(&op.Base, "subtreeJump", tr, weight, opts); err != nil {
		return nil, err
	}
	if !(size > 0) || math.IsInf(size, 0) {
		return nil, operator.Invalid(op.Name(), "size", "must be finite and positive", size)
	}
	op.logSize.Store(math.Log(size))
	return op, nil
}

// Propose implements operator.Proposer.
func (op *SubtreeJump) Propose(rng *rand.Rand) (operator.Result, error) {
	targets := pruneTargets(op.tree)
	if len(targets) == 0 {
		return operator.Rejection(), nil
	}
	i := pick(rng, targets)
	candidates := RegraftCandidates(op.tree, i)
	if len(candidates) == 0 {
		return operator.Rejection(), nil
	}
	k := sampleLog(rng, op.logWeights(i, candidates))
	return op.Jump(i, candidates[k])
}

// Jump moves i onto the edge above j and returns the log Hastings ratio of
// that jump. j must be one of RegraftCandidates(tree, i).
func (op *SubtreeJump) Jump(i, j *tree.Node) (operator.Result, error) {
	sib := i.Sibling()
	candidates := RegraftCandidates(op.tree, i)
	logw := op.logWeights(i, candidates)
	k := slices.Index(candidates, j)
	if k < 0 {
		return operator.Rejection(), nil
	}
	logForward := logw[k] - logSumExp(logw)

	if err := regraft(op.tree, i, j); err != nil {
		return operator.Result{}, fatal(op.Name(), err)
	}

	back := RegraftCandidates(op.tree, i)
	logw = op.logWeights(i, back)
	if r := slices.Index(back, sib); r >= 0 {
		return operator.Proposed(logw[r] - logSumExp(logw) - logForward), nil
	}
	return operator.Result{}, fatal(op.Name(), fmt.Errorf("%w: sibling %d is not a reverse destination", operator.ErrInconsistentState, sib.Index()))
}

func (op *SubtreeJump) logWeights(i *tree.Node, candidates []*tree.Node) []float64 {
	h := i.Parent().Height()
	size := op.RawParameter()
	logw := make([]float64, len(candidates))
	for k, j := range candidates {
		d := op.tree.MRCA(i, j).Height() - h
		logw[k] = -d / size
	}
	return logw
}

// AdaptableParameter returns log(size).
func (op *SubtreeJump) AdaptableParameter() float64 { return op.logSize.Load() }

// SetAdaptableParameter sets size = exp(v).
func (op *SubtreeJump) SetAdaptableParameter(v float64) { op.logSize.Store(v) }

// RawParameter returns the size.
func (op *SubtreeJump) RawParameter() float64 { return math.Exp(op.logSize.Load()) }

// AdaptableParameterName implements operator.Tunable.
func (op *SubtreeJump) AdaptableParameterName() string { return "size" }

func logSumExp(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	if math.IsInf(m, -1) {
		return m
	}
	var s float64
	for _, x := range xs {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}

// sampleLog draws an index with probability proportional to exp(logw[k]).
func sampleLog(rng *rand.Rand, logw []float64) int {
	m := math.Inf(-1)
	for _, x := range logw {
		m = math.Max(m, x)
	}
	cum := make([]float64, len(logw))
	var total float64
	for k, x := range logw {
		total += math.Exp(x - m)
		cum[k] = total
	}
	u := rng.Float64() * total
	for k, c := range cum {
		if u < c {
			return k
		}
	}
	return len(logw) - 1
}
