// Package checkpoint defines the serialisable snapshot of a chain, used to
// stop a run and resume it later with identical operator tuning.
package checkpoint

import (
	"time"

	"github.com/aretw0/sprig/pkg/tree"
)

// Checkpoint is the full resumable state of one chain.
type Checkpoint struct {
	ID         string           `json:"id"`
	State      uint64           `json:"state"`
	LogDensity float64          `json:"log_density"`
	Created    time.Time        `json:"created"`
	RNG        []byte           `json:"rng"`
	Trees      []TreeState      `json:"trees"`
	Parameters []ParameterState `json:"parameters"`
	Traits     []TraitState     `json:"traits,omitempty"`
	Operators  []OperatorState  `json:"operators"`
}

// TreeState stores a tree by node index. Newick is informational only.
type TreeState struct {
	Newick string     `json:"newick"`
	Graph  tree.State `json:"graph"`
}

// ParameterState stores the values of one named parameter.
type ParameterState struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// TraitState stores the per-tip state vectors of one named trait.
type TraitState struct {
	Name   string  `json:"name"`
	States [][]int `json:"states"`
}

// OperatorState stores the counters and tuning of one operator.
type OperatorState struct {
	Name            string   `json:"name"`
	Weight          float64  `json:"weight"`
	Accepted        int64    `json:"accepted"`
	Rejected        int64    `json:"rejected"`
	Infeasible      int64    `json:"infeasible"`
	Deviation       float64  `json:"deviation,omitempty"`
	Adaptable       *float64 `json:"adaptable,omitempty"`
	AdaptationCount uint64   `json:"adaptation_count,omitempty"`
}

// Operator returns the stored state of the named operator.
func (c *Checkpoint) Operator(name string) (OperatorState, bool) {
	for _, op := range c.Operators {
		if op.Name == name {
			return op, true
		}
	}
	return OperatorState{}, false
}

// Parameter returns the stored values of the named parameter.
func (c *Checkpoint) Parameter(name string) (ParameterState, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterState{}, false
}
