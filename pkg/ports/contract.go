package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sprig/pkg/checkpoint"
	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a
// CheckpointStore implementation adheres to the interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	id := "contract-chain-" + time.Now().Format("20060102150405")

	sample := func(id string) *checkpoint.Checkpoint {
		tuning := -1.25
		return &checkpoint.Checkpoint{
			ID:         id,
			State:      1200,
			LogDensity: -42.5,
			Created:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			RNG:        []byte{1, 2, 3, 4},
			Trees: []checkpoint.TreeState{{
				Newick: "(A:1,B:1);",
				Graph: tree.State{
					Root:     2,
					Parents:  []int{2, 2, -1},
					Children: [][]int{nil, nil, {0, 1}},
					Heights:  []float64{0, 0, 1},
				},
			}},
			Parameters: []checkpoint.ParameterState{{Name: "kappa", Values: []float64{2.5}}},
			Operators: []checkpoint.OperatorState{
				{Name: "narrowExchange", Weight: 3, Accepted: 10, Rejected: 90},
				{Name: "scale(kappa)", Weight: 1, Accepted: 5, Rejected: 15, Adaptable: &tuning, AdaptationCount: 20},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := sample(id)
		require.NoError(t, store.Save(ctx, id, cp), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp.State, loaded.State)
		assert.Equal(t, cp.LogDensity, loaded.LogDensity)
		assert.Equal(t, cp.RNG, loaded.RNG)
		assert.Equal(t, cp.Trees[0].Graph, loaded.Trees[0].Graph)
		assert.True(t, cp.Created.Equal(loaded.Created))

		op, ok := loaded.Operator("scale(kappa)")
		require.True(t, ok)
		require.NotNil(t, op.Adaptable)
		assert.Equal(t, -1.25, *op.Adaptable)
		assert.Equal(t, uint64(20), op.AdaptationCount)
	})

	t.Run("Overwrite", func(t *testing.T) {
		cp := sample(id)
		cp.State = 2400
		require.NoError(t, store.Save(ctx, id, cp))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(2400), loaded.State)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, sample(id)))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, id1, sample(id1))
		_ = store.Save(ctx, id2, sample(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
