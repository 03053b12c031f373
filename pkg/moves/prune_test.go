package moves_test

import (
	"testing"

	"github.com/aretw0/sprig/pkg/moves"
	"github.com/aretw0/sprig/pkg/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneRegraft_SymmetricCherriesHaveNoCandidates(t *testing.T) {
	tr := parse(t, "((A:1,B:1):1,(C:1,D:1):1);")
	before := tr.Export()

	for _, name := range []string{"A", "B", "C", "D"} {
		assert.Empty(t, moves.RegraftCandidates(tr, tip(t, tr, name)), "tip %s", name)
	}

	op, err := moves.NewFixedHeightPruneRegraft(tr, 1)
	require.NoError(t, err)
	for seed := uint64(0); seed < 32; seed++ {
		res, err := op.Propose(seeded(seed))
		require.NoError(t, err)
		assert.True(t, res.Rejected)
	}
	if diff := cmp.Diff(before, tr.Export()); diff != "" {
		t.Errorf("rejected proposals changed the tree (-want +got):\n%s", diff)
	}
}

func TestPruneRegraft_HandComputedMove(t *testing.T) {
	tr := parse(t, "((A:1,B:1):1,(C:1.5,D:1.5):0.5);")
	a, c, d := tip(t, tr, "A"), tip(t, tr, "C"), tip(t, tr, "D")

	assert.Equal(t, []*tree.Node{c, d}, moves.RegraftCandidates(tr, a))

	op, err := moves.NewFixedHeightPruneRegraft(tr, 1)
	require.NoError(t, err)
	res, err := op.Regraft(a, c)
	require.NoError(t, err)
	assert.False(t, res.Rejected)
	assert.Equal(t, 0.0, res.LogHastingsRatio, "log 2 - log 2")

	assert.Equal(t, "(((A,C),D),B);", tr.Topology())
	assert.Equal(t, 1.0, a.Parent().Height(), "pruned node keeps its height")
	assert.Len(t, moves.RegraftCandidates(tr, a), 2, "reverse set: B and D")
	require.NoError(t, tr.Validate())

	// The reverse move restores the original topology.
	res, err = op.Regraft(a, tip(t, tr, "B"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.LogHastingsRatio)
	assert.Equal(t, "((A,B),(C,D));", tr.Topology())

	res, err = op.Regraft(a, a.Sibling())
	require.NoError(t, err)
	assert.True(t, res.Rejected, "the current sibling is not a destination")
}

func TestPruneRegraft_SeededProposals(t *testing.T) {
	for seed := uint64(0); seed < 32; seed++ {
		tr := parse(t, "((A:1,B:1):1,(C:1.5,D:1.5):0.5);")
		op, err := moves.NewFixedHeightPruneRegraft(tr, 1)
		require.NoError(t, err)

		res, err := op.Propose(seeded(seed))
		require.NoError(t, err)
		require.False(t, res.Rejected, "every target has a destination")
		assert.Equal(t, 0.0, res.LogHastingsRatio)
		assert.Contains(t, []string{
			"(((A,C),D),B);", "(((A,D),C),B);",
			"(A,((B,C),D));", "(A,((B,D),C));",
			"(((A,B),C),D);", "(((A,B),D),C);",
		}, tr.Topology())
	}
}
