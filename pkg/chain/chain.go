package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/ports"
	"github.com/aretw0/sprig/pkg/tree"
)

// Chain is one Metropolis-Hastings chain.
type Chain struct {
	id       string
	density  ports.Density
	schedule *operator.Schedule
	pcg      *rand.PCG
	rng      *rand.Rand

	trees  []*tree.Tree
	params []*param.Parameter
	traits []*param.TipTraits

	logger *slog.Logger
	hooks  Hooks
	store  ports.CheckpointStore
	every  uint64

	state       atomic.Uint64
	logDensity  operator.AtomicFloat64
	initialised atomic.Bool
}

// StepResult reports the outcome of one Step.
type StepResult struct {
	State            uint64
	Operator         string
	Accepted         bool
	Infeasible       bool
	LogHastingsRatio float64
	LogDensity       float64
}

// New creates a chain. The seed fully determines the random stream.
func New(density ports.Density, schedule *operator.Schedule, seed uint64, opts ...Option) (*Chain, error) {
	if density == nil {
		return nil, errors.New("chain: density is required")
	}
	if schedule == nil {
		return nil, errors.New("chain: schedule is required")
	}
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	c := &Chain{
		density:  density,
		schedule: schedule,
		pcg:      pcg,
		rng:      rand.New(pcg),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.logger = c.logger.With("chain", c.id)
	if c.store != nil && c.every == 0 {
		return nil, fmt.Errorf("chain %s: checkpoint interval must be positive", c.id)
	}
	return c, nil
}

// ID returns the chain identifier.
func (c *Chain) ID() string { return c.id }

// State returns the number of completed steps.
func (c *Chain) State() uint64 { return c.state.Load() }

// LogDensity returns the log density of the current state. It is NaN before
// the first step.
func (c *Chain) LogDensity() float64 {
	if !c.initialised.Load() {
		return math.NaN()
	}
	return c.logDensity.Load()
}

// Schedule returns the operator schedule.
func (c *Chain) Schedule() *operator.Schedule { return c.schedule }

// Trees returns the registered trees.
func (c *Chain) Trees() []*tree.Tree { return c.trees }

// Parameters returns the registered parameters.
func (c *Chain) Parameters() []*param.Parameter { return c.params }

// Run performs n steps or stops at the first error or cancellation.
func (c *Chain) Run(ctx context.Context, n uint64) error {
	c.logger.Info("chain started", "steps", n, "operators", c.schedule.Len())
	for k := uint64(0); k < n; k++ {
		if _, err := c.Step(ctx); err != nil {
			return err
		}
	}
	c.logger.Info("chain finished", "state", c.state.Load(), "log_density", c.logDensity.Load())
	return nil
}

// Step performs one proposal and its accept/reject decision.
func (c *Chain) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	if !c.initialised.Load() {
		lp, err := c.density.LogDensity(ctx)
		if err != nil {
			return StepResult{}, fmt.Errorf("initial density: %w", err)
		}
		c.logDensity.Store(lp)
		c.initialised.Store(true)
	}

	idx := c.schedule.SelectNext(c.rng)
	if idx < 0 {
		return StepResult{}, ErrEmptySchedule
	}
	op := c.schedule.Operator(idx)
	current := c.logDensity.Load()
	ev := &Event{ChainID: c.id, State: c.state.Load() + 1, Operator: op.Name(), LogDensity: current}

	c.storeModel()
	emit(ctx, c.hooks.OnPropose, ev)

	res, err := op.Propose(c.rng)
	if err != nil {
		_ = c.restoreModel()
		return StepResult{}, c.fail(ctx, ev, op, err)
	}
	state := c.state.Add(1)
	out := StepResult{State: state, Operator: op.Name(), LogDensity: current}

	if res.Rejected {
		out.Infeasible = true
		ev.Infeasible = true
		op.Stats().RecordInfeasible()
		op.Reject()
		c.adapt(op, false)
		emit(ctx, c.hooks.OnReject, ev)
		return out, c.maybeCheckpoint(ctx)
	}
	out.LogHastingsRatio = res.LogHastingsRatio
	ev.LogHastingsRatio = res.LogHastingsRatio

	proposed, err := c.density.LogDensity(ctx)
	if err != nil {
		_ = c.restoreModel()
		return StepResult{}, c.fail(ctx, ev, op, fmt.Errorf("density: %w", err))
	}

	if c.accept(op, current, proposed, res.LogHastingsRatio) {
		op.Accept(proposed - current)
		c.logDensity.Store(proposed)
		out.Accepted = true
		out.LogDensity = proposed
		ev.LogDensity = proposed
		c.adapt(op, true)
		emit(ctx, c.hooks.OnAccept, ev)
	} else {
		if err := c.restoreModel(); err != nil {
			return StepResult{}, c.fail(ctx, ev, op, err)
		}
		op.Reject()
		c.adapt(op, false)
		emit(ctx, c.hooks.OnReject, ev)
	}
	return out, c.maybeCheckpoint(ctx)
}

func (c *Chain) accept(op operator.Operator, current, proposed, logHastings float64) bool {
	if _, ok := op.(operator.Gibbs); ok {
		return true
	}
	if math.IsNaN(proposed) || math.IsInf(proposed, -1) {
		return false
	}
	logAlpha := proposed - current + logHastings
	if logAlpha >= 0 {
		return true
	}
	return math.Log(c.rng.Float64()) < logAlpha
}

func (c *Chain) adapt(op operator.Operator, accepted bool) {
	a, ok := op.(operator.AdaptiveOperator)
	if !ok {
		return
	}
	a.RecordOutcome(accepted)
	if n := a.AdaptationCount(); n&(n-1) == 0 {
		c.logger.Debug("adaptation",
			"operator", op.Name(),
			"count", n,
			"value", a.RawParameter(),
			"acceptance", op.Stats().AcceptanceRate(),
		)
	}
}

func (c *Chain) fail(ctx context.Context, ev *Event, op operator.Operator, err error) error {
	err = fmt.Errorf("operator %s: %w", op.Name(), err)
	ev.Err = err
	c.logger.Error("chain stopped", "state", c.state.Load(), "operator", op.Name(), "error", err)
	emit(ctx, c.hooks.OnFatal, ev)
	return err
}

func (c *Chain) storeModel() {
	for _, t := range c.trees {
		t.Store()
	}
	for _, p := range c.params {
		p.Store()
	}
}

func (c *Chain) restoreModel() error {
	for _, t := range c.trees {
		if err := t.Restore(); err != nil {
			return err
		}
	}
	for _, p := range c.params {
		p.Restore()
	}
	return nil
}
