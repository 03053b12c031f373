package param

import (
	"fmt"
	"slices"
)

// TipTraits holds one discrete state vector per tip, indexed like the tips of
// the tree it describes.
type TipTraits struct {
	name      string
	states    [][]int
	listeners []func(tip int)
}

// NewTipTraits copies states; states[i] belongs to tip i.
func NewTipTraits(name string, states [][]int) (*TipTraits, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("tip traits %q: no tips", name)
	}
	tt := &TipTraits{name: name, states: make([][]int, len(states))}
	for i, s := range states {
		tt.states[i] = slices.Clone(s)
	}
	return tt, nil
}

// Name returns the trait name.
func (tt *TipTraits) Name() string { return tt.name }

// TipCount returns the number of tips.
func (tt *TipTraits) TipCount() int { return len(tt.states) }

// State returns a copy of the state vector of a tip.
func (tt *TipTraits) State(tip int) []int { return slices.Clone(tt.states[tip]) }

// SetState replaces the state vector of a tip.
func (tt *TipTraits) SetState(tip int, s []int) {
	tt.states[tip] = slices.Clone(s)
	for _, l := range tt.listeners {
		l(tip)
	}
}

// AddListener registers a callback fired after a tip changed.
func (tt *TipTraits) AddListener(l func(tip int)) {
	tt.listeners = append(tt.listeners, l)
}
