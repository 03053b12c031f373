package moves_test

import (
	"testing"

	"github.com/aretw0/sprig/pkg/moves"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrowExchange_Seeded(t *testing.T) {
	var swapped int
	for seed := uint64(0); seed < 32; seed++ {
		tr := parse(t, "((A:1,B:1):1,(C:1.5,D:1.5):0.5);")
		before := tr.Export()
		op, err := moves.NewNarrowExchange(tr, 1)
		require.NoError(t, err)

		res, err := op.Propose(seeded(seed))
		require.NoError(t, err)
		if res.Rejected {
			// A or B: their uncle is older than their parent.
			assert.Equal(t, before, tr.Export())
			continue
		}
		swapped++
		assert.Equal(t, 0.0, res.LogHastingsRatio)
		assert.Contains(t, []string{"(((A,B),D),C);", "(((A,B),C),D);"}, tr.Topology())
	}
	assert.Positive(t, swapped)
}

func TestWideExchange_TwoTipsHaveNothingToSwap(t *testing.T) {
	tr := parse(t, "(A:1,B:1);")
	op, err := moves.NewWideExchange(tr, 1)
	require.NoError(t, err)
	res, err := op.Propose(seeded(1))
	require.NoError(t, err)
	assert.True(t, res.Rejected, "the only pair shares a parent")
}

func TestMoves_InvalidConfig(t *testing.T) {
	tr := parse(t, "((A:1,B:1):1,(C:1,D:1):1);")

	_, err := moves.NewNarrowExchange(nil, 1)
	assert.ErrorIs(t, err, operator.ErrInvalidConfig)
	_, err = moves.NewWideExchange(tr, 0)
	assert.ErrorIs(t, err, operator.ErrInvalidConfig)
	_, err = moves.NewSubtreeJump(tr, 1, 0)
	assert.ErrorIs(t, err, operator.ErrInvalidConfig)
	_, err = moves.NewUniformHeight(tr, -2)
	assert.ErrorIs(t, err, operator.ErrInvalidConfig)

	op, err := moves.NewFixedHeightPruneRegraft(tr, 1, moves.WithName("spr.tree1"))
	require.NoError(t, err)
	assert.Equal(t, "spr.tree1", op.Name())
}
