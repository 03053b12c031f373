package density_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sprig/internal/density"
	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/tree"
)

func TestReference_Tree(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);")
	require.NoError(t, err)

	lp, err := density.New(density.WithTree(tr, 2)).LogDensity(context.Background())
	require.NoError(t, err)
	// Four branches with total length 5.
	assert.InDelta(t, 4*math.Log(2)-2*5, lp, 1e-12)
}

func TestReference_Parameters(t *testing.T) {
	p, err := param.New("kappa", []float64{1, math.E})
	require.NoError(t, err)

	lp, err := density.New(density.WithParameter(p, density.LogNormal{Mu: 0, Sigma: 1})).LogDensity(context.Background())
	require.NoError(t, err)
	c := -0.5 * math.Log(2*math.Pi)
	assert.InDelta(t, c+(c-0.5-1), lp, 1e-12)

	assert.True(t, math.IsInf(density.LogNormal{Sigma: 1}.LogPDF(0), -1))
	assert.Equal(t, 0.0, density.Uniform{}.LogPDF(42))
	assert.InDelta(t, -0.5*math.Log(2*math.Pi)-math.Log(2), density.Normal{Mu: 1, Sigma: 2}.LogPDF(1), 1e-12)
}

func TestReference_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := density.New().LogDensity(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
