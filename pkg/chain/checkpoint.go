package chain

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aretw0/sprig/pkg/checkpoint"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

// Checkpoint captures everything needed to resume the chain: the state
// number, model values, operator counters and tuning, and the random stream.
func (c *Chain) Checkpoint() (*checkpoint.Checkpoint, error) {
	rng, err := c.pcg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("chain %s: marshal rng: %w", c.id, err)
	}
	cp := &checkpoint.Checkpoint{
		ID:         c.id,
		State:      c.state.Load(),
		LogDensity: c.logDensity.Load(),
		Created:    time.Now().UTC(),
		RNG:        rng,
	}
	for _, t := range c.trees {
		cp.Trees = append(cp.Trees, checkpoint.TreeState{Newick: t.Newick(), Graph: t.Export()})
	}
	for _, p := range c.params {
		cp.Parameters = append(cp.Parameters, checkpoint.ParameterState{Name: p.Name(), Values: p.Values()})
	}
	for _, tt := range c.traits {
		ts := checkpoint.TraitState{Name: tt.Name(), States: make([][]int, tt.TipCount())}
		for i := range ts.States {
			ts.States[i] = tt.State(i)
		}
		cp.Traits = append(cp.Traits, ts)
	}
	for i, op := range c.schedule.Operators() {
		st := op.Stats()
		saved := checkpoint.OperatorState{
			Name:       op.Name(),
			Weight:     c.schedule.Weight(i),
			Accepted:   st.Accepted(),
			Rejected:   st.Rejected(),
			Infeasible: st.Infeasible(),
			Deviation:  st.Deviation(),
		}
		if t, ok := op.(operator.Tunable); ok {
			v := t.AdaptableParameter()
			saved.Adaptable = &v
		}
		if a, ok := op.(operator.AdaptiveOperator); ok {
			saved.AdaptationCount = a.AdaptationCount()
		}
		cp.Operators = append(cp.Operators, saved)
	}
	return cp, nil
}

type adaptationCounter interface {
	SetAdaptationCount(n uint64)
}

// Restore resumes the chain from cp. Operators, parameters and traits are
// matched by name and trees by position; any difference is reported as
// ErrCheckpointMismatch before the chain is modified.
func (c *Chain) Restore(cp *checkpoint.Checkpoint) error {
	if err := c.matches(cp); err != nil {
		return err
	}
	var pcg rand.PCG
	if err := pcg.UnmarshalBinary(cp.RNG); err != nil {
		return fmt.Errorf("%w: rng: %w", ErrCheckpointMismatch, err)
	}
	prev := make([]tree.State, len(c.trees))
	for i, t := range c.trees {
		prev[i] = t.Export()
		if err := t.Import(cp.Trees[i].Graph); err != nil {
			for j := range i {
				_ = c.trees[j].Import(prev[j])
			}
			return fmt.Errorf("%w: tree %d: %w", ErrCheckpointMismatch, i, err)
		}
	}
	for _, p := range c.params {
		ps, _ := cp.Parameter(p.Name())
		if err := p.SetValues(ps.Values); err != nil {
			return fmt.Errorf("%w: %w", ErrCheckpointMismatch, err)
		}
	}
	for _, tt := range c.traits {
		for _, ts := range cp.Traits {
			if ts.Name != tt.Name() {
				continue
			}
			for tip, s := range ts.States {
				tt.SetState(tip, s)
			}
		}
	}
	for i, op := range c.schedule.Operators() {
		saved, _ := cp.Operator(op.Name())
		op.Stats().Set(saved.Accepted, saved.Rejected, saved.Infeasible, saved.Deviation)
		if saved.Weight > 0 && saved.Weight != c.schedule.Weight(i) {
			// Checked by matches.
			_ = c.schedule.SetWeight(i, saved.Weight)
		}
		if t, ok := op.(operator.Tunable); ok && saved.Adaptable != nil {
			t.SetAdaptableParameter(*saved.Adaptable)
		}
		if a, ok := op.(adaptationCounter); ok {
			a.SetAdaptationCount(saved.AdaptationCount)
		}
	}
	*c.pcg = pcg
	c.state.Store(cp.State)
	c.logDensity.Store(cp.LogDensity)
	c.initialised.Store(true)
	c.logger.Info("chain restored", "state", cp.State)
	return nil
}

func (c *Chain) matches(cp *checkpoint.Checkpoint) error {
	if cp == nil {
		return fmt.Errorf("%w: nil checkpoint", ErrCheckpointMismatch)
	}
	if len(cp.Trees) != len(c.trees) {
		return fmt.Errorf("%w: %d trees, chain has %d", ErrCheckpointMismatch, len(cp.Trees), len(c.trees))
	}
	for i, t := range c.trees {
		if got := len(cp.Trees[i].Graph.Heights); got != t.NodeCount() {
			return fmt.Errorf("%w: tree %d has %d nodes, chain has %d", ErrCheckpointMismatch, i, got, t.NodeCount())
		}
	}
	for _, p := range c.params {
		ps, ok := cp.Parameter(p.Name())
		if !ok {
			return fmt.Errorf("%w: missing parameter %q", ErrCheckpointMismatch, p.Name())
		}
		if len(ps.Values) != p.Dimension() {
			return fmt.Errorf("%w: parameter %q has %d values, chain has %d", ErrCheckpointMismatch, p.Name(), len(ps.Values), p.Dimension())
		}
	}
	for _, tt := range c.traits {
		found := false
		for _, ts := range cp.Traits {
			if ts.Name == tt.Name() {
				found = len(ts.States) == tt.TipCount()
			}
		}
		if !found {
			return fmt.Errorf("%w: trait %q", ErrCheckpointMismatch, tt.Name())
		}
	}
	if len(cp.Operators) != c.schedule.Len() {
		return fmt.Errorf("%w: %d operators, chain has %d", ErrCheckpointMismatch, len(cp.Operators), c.schedule.Len())
	}
	for _, op := range c.schedule.Operators() {
		saved, ok := cp.Operator(op.Name())
		if !ok {
			return fmt.Errorf("%w: missing operator %q", ErrCheckpointMismatch, op.Name())
		}
		if saved.Weight != 0 && !(saved.Weight > 0 && !math.IsInf(saved.Weight, 1)) {
			return fmt.Errorf("%w: operator %q weight %v", ErrCheckpointMismatch, op.Name(), saved.Weight)
		}
	}
	return nil
}

// Resume loads the checkpoint with the chain's ID from the configured store
// and restores it.
func (c *Chain) Resume(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("chain %s: no checkpoint store configured", c.id)
	}
	cp, err := c.store.Load(ctx, c.id)
	if err != nil {
		return err
	}
	return c.Restore(cp)
}

func (c *Chain) maybeCheckpoint(ctx context.Context) error {
	if c.store == nil || c.state.Load()%c.every != 0 {
		return nil
	}
	return c.SaveCheckpoint(ctx)
}

// SaveCheckpoint writes a checkpoint to the configured store.
func (c *Chain) SaveCheckpoint(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("chain %s: no checkpoint store configured", c.id)
	}
	cp, err := c.Checkpoint()
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, c.id, cp); err != nil {
		c.logger.Error("checkpoint failed", "state", c.state.Load(), "error", err)
		return fmt.Errorf("chain %s: save checkpoint: %w", c.id, err)
	}
	c.logger.Info("checkpoint saved", "state", c.state.Load())
	return nil
}
