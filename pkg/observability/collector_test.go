package observability_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sprig/pkg/continuous"
	"github.com/aretw0/sprig/pkg/observability"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
)

type source struct {
	id    string
	state uint64
	s     *operator.Schedule
}

func (s source) ID() string                   { return s.id }
func (s source) State() uint64                { return s.state }
func (s source) Schedule() *operator.Schedule { return s.s }

func newSource(t *testing.T) source {
	t.Helper()
	p, err := param.New("kappa", []float64{1}, param.WithBounds(0, 100))
	require.NoError(t, err)

	scale, err := continuous.NewScale(p, 3, 0.5)
	require.NoError(t, err)
	adaptive, err := operator.NewAdaptive(scale)
	require.NoError(t, err)
	adaptive.SetAdaptationCount(4)
	adaptive.Stats().Set(1, 3, 1, 0)

	walk, err := continuous.NewRandomWalk(p, 1, 1, continuous.WithName("walk"))
	require.NoError(t, err)

	s, err := operator.NewSchedule(adaptive, walk)
	require.NoError(t, err)
	return source{id: "c1", state: 4, s: s}
}

func TestCollector_Counters(t *testing.T) {
	c := observability.NewCollector("sprig")
	c.Add(newSource(t))

	expected := `
# HELP sprig_operator_accepted_total Accepted proposals per operator
# TYPE sprig_operator_accepted_total counter
sprig_operator_accepted_total{chain="c1",operator="scale(kappa)"} 1
sprig_operator_accepted_total{chain="c1",operator="walk"} 0
# HELP sprig_operator_infeasible_total Proposals rejected by the operator itself
# TYPE sprig_operator_infeasible_total counter
sprig_operator_infeasible_total{chain="c1",operator="scale(kappa)"} 1
sprig_operator_infeasible_total{chain="c1",operator="walk"} 0
# HELP sprig_operator_acceptance_ratio Fraction of proposals accepted
# TYPE sprig_operator_acceptance_ratio gauge
sprig_operator_acceptance_ratio{chain="c1",operator="scale(kappa)"} 0.25
sprig_operator_acceptance_ratio{chain="c1",operator="walk"} 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"sprig_operator_accepted_total",
		"sprig_operator_infeasible_total",
		"sprig_operator_acceptance_ratio",
	)
	assert.NoError(t, err)
}

func TestCollector_Tuning(t *testing.T) {
	c := observability.NewCollector("sprig")
	c.Add(newSource(t))

	expected := `
# HELP sprig_operator_tuning Current value of the tuning parameter
# TYPE sprig_operator_tuning gauge
sprig_operator_tuning{chain="c1",operator="scale(kappa)",parameter="scaleFactor"} 0.5
sprig_operator_tuning{chain="c1",operator="walk",parameter="windowSize"} 1
# HELP sprig_operator_adaptations Outcomes recorded by the adaptive controller
# TYPE sprig_operator_adaptations gauge
sprig_operator_adaptations{chain="c1",operator="scale(kappa)"} 4
# HELP sprig_chain_state Number of completed steps of a chain
# TYPE sprig_chain_state gauge
sprig_chain_state{chain="c1"} 4
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"sprig_operator_tuning",
		"sprig_operator_adaptations",
		"sprig_chain_state",
	)
	assert.NoError(t, err)
}

func TestCollector_Registry(t *testing.T) {
	c := observability.NewCollector("sprig")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Zero(t, n, "no chains yet")

	c.Add(newSource(t))
	// One state, five series per operator, one tuning each, one adaptation count.
	assert.Equal(t, 1+2*5+2+1, testutil.CollectAndCount(c))
	problems, err := testutil.CollectAndLint(c)
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
