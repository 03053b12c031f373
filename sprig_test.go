package sprig_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/sprig"
	"github.com/aretw0/sprig/internal/adapters/memory"
	"github.com/aretw0/sprig/pkg/chain"
)

func run(steps int, resume bool) []byte {
	return fmt.Appendf(nil, `
seed: 11
steps: %d
replicates: 2
model:
  tree: {taxa: [A, B, C, D, E, F]}
  parameters:
    - {name: kappa, values: [1], lower: 0, prior: {kind: lognormal, sigma: 1}}
operators:
  - type: narrowExchange
  - type: wideExchange
  - type: fixedHeightSubtreePruneRegraft
  - type: subtreeJump
  - type: uniformHeight
    weight: 2
  - type: scale
    params: {parameter: kappa}
checkpoint: {store: memory, every: 100, resume: %t}
`, steps, resume)
}

func TestSampler_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	s, err := sprig.NewFromYAML(run(400, false), sprig.WithStore(store))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, s.Chains(), 2)
	for _, c := range s.Chains() {
		assert.Equal(t, uint64(400), c.State())
	}

	reports := s.Analysis()
	require.Len(t, reports, 2)
	assert.Equal(t, "run-0", reports[0].ID)
	assert.Len(t, reports[0].Rows, 6)
	var total int64
	for _, r := range reports[1].Rows {
		total += r.Count
	}
	assert.Equal(t, int64(400), total)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run-0", "run-1"}, ids)

	a, b := s.Chains()[0].Trees()[0].Newick(), s.Chains()[1].Trees()[0].Newick()
	assert.NotEqual(t, a, b, "replicates draw different streams")
}

func TestSampler_Resume(t *testing.T) {
	store := memory.New()
	first, err := sprig.NewFromYAML(run(300, false), sprig.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Run(context.Background()))

	second, err := sprig.NewFromYAML(run(500, true), sprig.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, second.Run(context.Background()))

	straight, err := sprig.NewFromYAML(run(500, false))
	require.NoError(t, err)
	require.NoError(t, straight.Run(context.Background()))

	for i, c := range second.Chains() {
		assert.Equal(t, uint64(500), c.State())
		assert.Equal(t, straight.Chains()[i].Trees()[0].Newick(), c.Trees()[0].Newick(),
			"resumed chain follows the uninterrupted one")
		assert.Equal(t, straight.Chains()[i].Parameters()[0].Values(), c.Parameters()[0].Values())
	}
}

func TestSampler_ResumeWithoutCheckpointStartsFresh(t *testing.T) {
	s, err := sprig.NewFromYAML(run(50, true), sprig.WithStore(memory.New()))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, uint64(50), s.Chains()[0].State())
}

func TestSampler_ResumeRequiresStore(t *testing.T) {
	_, err := sprig.NewFromYAML([]byte(`
steps: 10
model:
  tree: {taxa: [A, B, C]}
operators:
  - type: uniformHeight
`), sprig.WithResume(true))
	assert.ErrorContains(t, err, "resume requires a checkpoint store")
}

func TestSampler_CancelSavesCheckpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.New()
	hooks := chain.Hooks{OnPropose: func(_ context.Context, e *chain.Event) {
		if e.State == 150 {
			cancel()
		}
	}}
	s, err := sprig.NewFromYAML(run(1_000_000, false), sprig.WithStore(store), sprig.WithHooks(hooks))
	require.NoError(t, err)

	err = s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	for _, c := range s.Chains() {
		cp, err := store.Load(context.Background(), c.ID())
		require.NoError(t, err)
		assert.Equal(t, c.State(), cp.State)
		assert.Less(t, cp.State, uint64(1_000_000))
	}
}

func TestSampler_LockedChain(t *testing.T) {
	locker := memory.NewLocker()
	unlock, err := locker.Lock(context.Background(), "run-1", time.Minute)
	require.NoError(t, err)
	defer unlock(context.Background())

	s, err := sprig.NewFromYAML(run(10, false),
		sprig.WithLocker(locker),
		sprig.WithLockTiming(time.Minute, 20*time.Millisecond),
	)
	require.NoError(t, err)
	err = s.Run(context.Background())
	assert.ErrorIs(t, err, sprig.ErrChainBusy)
	assert.ErrorContains(t, err, "run-1")

	// run-0 was released when Run gave up.
	again, err := locker.Lock(context.Background(), "run-0", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(context.Background()))
}

func TestSampler_Handler(t *testing.T) {
	s, err := sprig.NewFromYAML(run(20, false), sprig.WithName("demo"))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	h := s.Handler()
	for _, path := range []string{"/health", "/chains", "/chains/demo-0/operators", "/chains/demo-1/report", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	families, err := s.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_File(t *testing.T) {
	s, err := sprig.New("internal/config/testdata/run.yaml")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "run", s.Name)
	assert.Len(t, s.Chains(), 2)
	assert.Equal(t, "run-1", s.Chains()[1].ID())

	_, err = sprig.New("does-not-exist.yaml")
	assert.Error(t, err)
}
