package moves

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/tree"
)

// exchange swaps i and j between their parents.
func exchange(tr *tree.Tree, i, j *tree.Node) error {
	pi, pj := i.Parent(), j.Parent()

	edit, err := tr.BeginEdit()
	if err != nil {
		return err
	}
	defer edit.Abort()

	edit.RemoveChild(pi, i)
	edit.RemoveChild(pj, j)
	edit.AddChild(pi, j)
	edit.AddChild(pj, i)
	return edit.Commit()
}

// regraft prunes the parent of i, joining i's sibling to its grandparent, and
// inserts it on the edge above j. Heights are unchanged.
func regraft(tr *tree.Tree, i, j *tree.Node) error {
	p := i.Parent()
	sib := i.Sibling()
	gp := p.Parent()

	edit, err := tr.BeginEdit()
	if err != nil {
		return err
	}
	defer edit.Abort()

	edit.RemoveChild(p, sib)
	edit.RemoveChild(gp, p)
	edit.AddChild(gp, sib)

	pj := j.Parent()
	edit.RemoveChild(pj, j)
	edit.AddChild(p, j)
	edit.AddChild(pj, p)
	return edit.Commit()
}

// pruneTargets lists the nodes that are neither the root nor a child of it.
// A tree with n tips always has 2n-4 of them.
func pruneTargets(tr *tree.Tree) []*tree.Node {
	targets := make([]*tree.Node, 0, tr.NodeCount())
	for k := 0; k < tr.NodeCount(); k++ {
		n := tr.Node(k)
		if n.IsRoot() || n.Parent().IsRoot() {
			continue
		}
		targets = append(targets, n)
	}
	return targets
}

// RegraftCandidates returns, in node index order, the nodes j whose parent
// edge strictly brackets the height of i's parent. The edges of i, its
// sibling and its parent never qualify.
func RegraftCandidates(tr *tree.Tree, i *tree.Node) []*tree.Node {
	p := i.Parent()
	if p == nil {
		return nil
	}
	h := p.Height()
	sib := i.Sibling()

	var out []*tree.Node
	for k := 0; k < tr.NodeCount(); k++ {
		j := tr.Node(k)
		if j.IsRoot() || j == i || j == sib || j == p {
			continue
		}
		if j.Height() < h && h < j.Parent().Height() {
			out = append(out, j)
		}
	}
	return out
}

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.IntN(len(xs))]
}

func fatal(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
