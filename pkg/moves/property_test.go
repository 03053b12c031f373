package moves_test

import (
	"math"
	"testing"

	"github.com/aretw0/sprig/pkg/moves"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every structural move keeps the tree valid, and the symmetric ones report
// a log ratio of exactly 0. Half of the proposals are undone through
// Store/Restore, the way a chain driver does on rejection.
func TestMoves_PreserveInvariants(t *testing.T) {
	type build func(*tree.Tree) (operator.Operator, error)
	cases := []struct {
		name      string
		build     build
		symmetric bool
	}{
		{"narrow", func(tr *tree.Tree) (operator.Operator, error) { return moves.NewNarrowExchange(tr, 1) }, true},
		{"wide", func(tr *tree.Tree) (operator.Operator, error) { return moves.NewWideExchange(tr, 1) }, true},
		{"fhspr", func(tr *tree.Tree) (operator.Operator, error) { return moves.NewFixedHeightPruneRegraft(tr, 1) }, true},
		{"height", func(tr *tree.Tree) (operator.Operator, error) { return moves.NewUniformHeight(tr, 1) }, true},
		{"jump", func(tr *tree.Tree) (operator.Operator, error) { return moves.NewSubtreeJump(tr, 1, 0.5) }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := randomTree(t, 11, 12)
			op, err := c.build(tr)
			require.NoError(t, err)

			rng := seeded(42)
			start := tr.Topology()
			var applied int
			changed := false
			for k := 0; k < 500; k++ {
				tr.Store()
				res, err := op.Propose(rng)
				require.NoError(t, err)
				require.NoError(t, tr.Validate(), "proposal %d", k)

				if res.Rejected {
					continue
				}
				applied++
				if c.symmetric {
					require.Equal(t, 0.0, res.LogHastingsRatio, "proposal %d", k)
				} else {
					require.False(t, math.IsNaN(res.LogHastingsRatio) || math.IsInf(res.LogHastingsRatio, 0))
				}
				if rng.IntN(2) == 0 {
					require.NoError(t, tr.Restore())
					require.NoError(t, tr.Validate())
				}
				changed = changed || tr.Topology() != start
			}
			assert.Positive(t, applied)
			if c.name != "height" {
				assert.True(t, changed, "topology never changed")
			}
		})
	}
}
