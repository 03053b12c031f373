package moves_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func parse(t *testing.T, newick string) *tree.Tree {
	t.Helper()
	tr, err := tree.ParseNewick(newick)
	require.NoError(t, err)
	return tr
}

func randomTree(t *testing.T, seed uint64, tips int) *tree.Tree {
	t.Helper()
	taxa := make([]string, tips)
	for i := range taxa {
		taxa[i] = fmt.Sprintf("t%02d", i)
	}
	tr, err := tree.Random(seeded(seed), taxa, 1)
	require.NoError(t, err)
	return tr
}

func tip(t *testing.T, tr *tree.Tree, name string) *tree.Node {
	t.Helper()
	n, ok := tr.TipByName(name)
	require.True(t, ok, "tip %s", name)
	return n
}
