package config_test

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sprig/internal/config"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

func TestLoad(t *testing.T) {
	cfg, err := config.Load("testdata/run.yaml")
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Replicates)
	assert.Len(t, cfg.Operators, 8)
	assert.Equal(t, 1.0, cfg.Operators[1].Weight, "weight defaults to 1")
	assert.Equal(t, "scale(kappa)", cfg.Operators[6].DisplayName())
	assert.Equal(t, "uniformHeight", cfg.Operators[4].DisplayName())
	assert.Equal(t, config.StoreMemory, cfg.Checkpoint.Store)
	assert.Equal(t, uint64(500), cfg.Checkpoint.Every)

	walk, err := cfg.Operators[7].RandomWalk()
	require.NoError(t, err)
	assert.Equal(t, 2.0, walk.Window, "weakly typed input")
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []string
	}{
		"empty": {
			src:  "",
			want: []string{"empty document"},
		},
		"unknown key": {
			src:  "steps: 1\nstepz: 2\n",
			want: []string{"stepz"},
		},
		"everything missing": {
			src: "seed: 1\n",
			want: []string{
				"steps: must be positive",
				"model.tree: newick or taxa is required",
				"operators: at least one operator is required",
			},
		},
		"bad operators": {
			src: `
steps: 10
model:
  tree: {taxa: [A, B, C]}
  parameters:
    - {name: k, values: [1], prior: {kind: gamma}}
operators:
  - type: scale
    params: {parameter: nope, factr: 2}
  - type: narrowExchange
    params: {size: 1}
  - type: narrowExchange
  - type: bogus
  - type: uniformHeight
    weight: -1
    adapt: {}
  - type: tipSwap
  - type: subtreeJump
    adapt: {step: {kind: power, kappa: 0.2}}
checkpoint: {store: redis, resume: true}
`,
			want: []string{
				`prior.kind: unknown "gamma"`,
				`unknown parameter "nope"`,
				"factr",
				"narrowExchange takes no params",
				`duplicate name "narrowExchange"`,
				`unknown "bogus"`,
				"operators[4].weight: must be positive",
				"uniformHeight has no tuning parameter",
				"no traits declared",
				"kappa: must be in (0.5, 1]",
				"checkpoint.redis: address required",
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.src))
			require.Error(t, err)
			for _, w := range tc.want {
				assert.ErrorContains(t, err, w)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	cfg, err := config.Load("testdata/run.yaml")
	require.NoError(t, err)

	b, err := cfg.Build(rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, 5, b.Tree.TipCount())
	assert.Len(t, b.Parameters, 2)
	require.Len(t, b.Traits, 1)
	e, _ := b.Tree.TipByName("D")
	assert.Equal(t, []int{2}, b.Traits[0].State(e.Index()))

	s := b.Schedule
	require.Equal(t, 8, s.Len())
	assert.InDelta(t, 2.0/10.5, s.Probability(0), 1e-12)

	i, ok := s.Lookup("scale(kappa)")
	require.True(t, ok)
	scale, ok := s.Operator(i).(operator.AdaptiveOperator)
	require.True(t, ok, "tunable operators adapt by default")
	assert.Equal(t, 0.3, scale.TargetAcceptance())
	assert.InDelta(t, 0.5, scale.RawParameter(), 1e-12)

	i, ok = s.Lookup("subtreeJump")
	require.True(t, ok)
	jump, ok := s.Operator(i).(operator.AdaptiveOperator)
	require.True(t, ok)
	assert.Equal(t, operator.DefaultTarget, jump.TargetAcceptance())
	assert.InDelta(t, 0.5, jump.RawParameter(), 1e-12)

	i, ok = s.Lookup("uniformHeight")
	require.True(t, ok)
	_, ok = s.Operator(i).(operator.Tunable)
	assert.False(t, ok)

	lp, err := b.Density.LogDensity(t.Context())
	require.NoError(t, err)
	assert.False(t, math.IsNaN(lp) || math.IsInf(lp, 0), "finite density at the start")
}

func TestBuild_RandomTreeAndIndependence(t *testing.T) {
	cfg, err := config.Parse([]byte(`
steps: 10
model:
  tree: {taxa: [A, B, C, D]}
  parameters:
    - {name: k, values: [1]}
operators:
  - type: randomWalk
    params: {parameter: k}
`))
	require.NoError(t, err)

	a, err := cfg.Build(rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	b, err := cfg.Build(rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	assert.Equal(t, a.Tree.Newick(), b.Tree.Newick(), "same seed, same start")
	a.Parameters[0].SetValue(0, 5)
	assert.Equal(t, 1.0, b.Parameters[0].Value(0), "replicates share nothing")
	assert.NotSame(t, a.Schedule.Operator(0), b.Schedule.Operator(0))
}

func TestBuild_TraitsMustMatchTips(t *testing.T) {
	cases := map[string]struct {
		states string
		want   string
	}{
		"missing tip": {states: "{A: [0]}", want: `no states for tip "B"`},
		"unknown tip": {states: "{A: [0], B: [1], C: [1]}", want: `unknown tip "C"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(`
steps: 10
model:
  tree: {newick: "(A:1,B:1);"}
  traits:
    - {name: loc, states: ` + tc.states + `}
operators:
  - type: tipSwap
`))
			require.NoError(t, err)
			_, err = cfg.Build(rand.New(rand.NewPCG(1, 1)))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestBuild_DuplicateTaxa(t *testing.T) {
	for name, tr := range map[string]string{
		"newick": `{newick: "((A:1,A:1):1,B:2);"}`,
		"taxa":   `{taxa: [A, B, A]}`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(`
steps: 10
model:
  tree: ` + tr + `
operators:
  - type: uniformHeight
`))
			require.NoError(t, err)
			_, err = cfg.Build(rand.New(rand.NewPCG(1, 1)))
			assert.ErrorIs(t, err, tree.ErrDuplicateTaxon)
		})
	}
}
