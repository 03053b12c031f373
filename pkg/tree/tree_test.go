package tree_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourTips(t *testing.T) *tree.Tree {
	t.Helper()
	a, b := tree.Leaf("A", 0), tree.Leaf("B", 0)
	c, d := tree.Leaf("C", 0), tree.Leaf("D", 0)
	tr, err := tree.New(tree.Join(tree.Join(a, b, 1), tree.Join(c, d, 1), 2))
	require.NoError(t, err)
	return tr
}

func TestNew_Indexing(t *testing.T) {
	tr := fourTips(t)

	assert.Equal(t, 7, tr.NodeCount())
	assert.Equal(t, 4, tr.TipCount())
	assert.Equal(t, 3, tr.InternalCount())
	for i, name := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, name, tr.Tip(i).Name())
		assert.Equal(t, i, tr.Tip(i).Index())
	}
	assert.Equal(t, 6, tr.Root().Index(), "root is last in post-order")
	assert.True(t, tr.Root().IsRoot())
	assert.Equal(t, 2.0, tr.Root().Height())
}

func TestNew_RejectsBadHeights(t *testing.T) {
	a, b := tree.Leaf("A", 0), tree.Leaf("B", 0)
	_, err := tree.New(tree.Join(a, b, 0))
	assert.ErrorIs(t, err, tree.ErrInvalidStructure)

	a, b = tree.Leaf("A", 0), tree.Leaf("B", 0)
	_, err = tree.New(tree.Join(a, b, 0), tree.AllowDegenerate())
	assert.NoError(t, err, "zero-length branches are allowed when degenerate")
}

func TestNew_RejectsNonRoot(t *testing.T) {
	a, b := tree.Leaf("A", 0), tree.Leaf("B", 0)
	tree.Join(a, b, 1)
	_, err := tree.New(a)
	assert.ErrorIs(t, err, tree.ErrInvalidStructure)
}

func TestNew_RejectsDuplicateTaxa(t *testing.T) {
	_, err := tree.New(tree.Join(tree.Leaf("A", 0), tree.Leaf("A", 0), 1))
	assert.ErrorIs(t, err, tree.ErrDuplicateTaxon)

	_, err = tree.ParseNewick("((A:1,A:1):1,B:2);")
	assert.ErrorIs(t, err, tree.ErrDuplicateTaxon)

	_, err = tree.Random(rand.New(rand.NewPCG(1, 1)), []string{"A", "B", "A"}, 1)
	assert.ErrorIs(t, err, tree.ErrDuplicateTaxon)
}

func TestSibling_MRCA(t *testing.T) {
	tr := fourTips(t)
	a, _ := tr.TipByName("A")
	b, _ := tr.TipByName("B")
	c, _ := tr.TipByName("C")

	assert.Equal(t, b, a.Sibling())
	assert.Equal(t, a.Parent(), tr.MRCA(a, b))
	assert.Equal(t, tr.Root(), tr.MRCA(a, c))
	assert.True(t, tr.IsAncestor(tr.Root(), a))
	assert.False(t, tr.IsAncestor(a, c))
	assert.Nil(t, tr.Root().Sibling())
	assert.Equal(t, 1.0, a.BranchLength())
}

func TestSetHeight(t *testing.T) {
	tr := fourTips(t)
	a, _ := tr.TipByName("A")
	ab := a.Parent()

	var events []tree.ChangeEvent
	tr.AddListener(func(ev tree.ChangeEvent) { events = append(events, ev) })

	require.NoError(t, tr.SetHeight(ab, 1.5))
	assert.Equal(t, 1.5, ab.Height())
	require.Len(t, events, 1)
	assert.Equal(t, tree.HeightChanged, events[0].Kind)
	assert.Equal(t, ab.Index(), events[0].Node)

	assert.ErrorIs(t, tr.SetHeight(ab, 2.5), tree.ErrInvalidStructure, "above the root")
	assert.ErrorIs(t, tr.SetHeight(ab, 0), tree.ErrInvalidStructure, "at the children")
	assert.ErrorIs(t, tr.SetHeight(a, -1), tree.ErrInvalidStructure)
	assert.Equal(t, 1.5, ab.Height(), "failed updates leave the height alone")
}

func TestSetRate(t *testing.T) {
	tr := fourTips(t)
	a, _ := tr.TipByName("A")
	_, ok := a.Rate()
	assert.False(t, ok, "rates are optional")

	var events []tree.ChangeEvent
	tr.AddListener(func(ev tree.ChangeEvent) { events = append(events, ev) })

	tr.Store()
	require.NoError(t, tr.SetRate(a, 0.3))
	r, ok := a.Rate()
	assert.True(t, ok)
	assert.Equal(t, 0.3, r)
	assert.Equal(t, []tree.ChangeEvent{{Kind: tree.RateChanged, Node: a.Index()}}, events)
	assert.Equal(t, map[int]float64{a.Index(): 0.3}, tr.Export().Rates)

	assert.ErrorIs(t, tr.SetRate(a, -1), tree.ErrInvalidStructure)
	assert.ErrorIs(t, tr.SetRate(a, math.NaN()), tree.ErrInvalidStructure)

	require.NoError(t, tr.Restore())
	_, ok = a.Rate()
	assert.False(t, ok, "restore drops rates set after the store")

	s := tr.Export()
	s.Rates = map[int]float64{a.Index(): 2}
	require.NoError(t, tr.Import(s))
	r, _ = a.Rate()
	assert.Equal(t, 2.0, r)

	edit, err := tr.BeginEdit()
	require.NoError(t, err)
	assert.ErrorIs(t, tr.SetRate(a, 1), tree.ErrEditInProgress)
	edit.Abort()
}

func TestStoreRestore(t *testing.T) {
	tr := fourTips(t)
	before := tr.Export()
	tr.Store()

	a, _ := tr.TipByName("A")
	require.NoError(t, tr.SetHeight(a.Parent(), 1.7))
	require.NoError(t, tr.Restore())

	assert.Equal(t, before, tr.Export())
}

func TestImport_InvalidKeepsState(t *testing.T) {
	tr := fourTips(t)
	before := tr.Export()

	bad := tr.Export()
	bad.Heights[tr.Root().Index()] = 0.5
	assert.ErrorIs(t, tr.Import(bad), tree.ErrInvalidStructure)
	assert.Equal(t, before, tr.Export())

	short := tree.State{Root: 0}
	assert.ErrorIs(t, tr.Import(short), tree.ErrInvalidStructure)
	assert.Equal(t, before, tr.Export())
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	taxa := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	tr, err := tree.Random(rng, taxa, 1.0)
	require.NoError(t, err)
	assert.Equal(t, len(taxa), tr.TipCount())
	assert.Equal(t, 2*len(taxa)-1, tr.NodeCount())
	assert.NoError(t, tr.Validate())

	_, err = tree.Random(rng, []string{"A"}, 1.0)
	assert.Error(t, err)
	_, err = tree.Random(rng, taxa, 0)
	assert.Error(t, err)
}
