package config

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/sprig/internal/density"
	"github.com/aretw0/sprig/pkg/continuous"
	"github.com/aretw0/sprig/pkg/moves"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/ports"
	"github.com/aretw0/sprig/pkg/tree"
)

// Built is one independent copy of the model with its operators. Every
// replicate chain gets its own.
type Built struct {
	Tree       *tree.Tree
	Parameters []*param.Parameter
	Traits     []*param.TipTraits
	Schedule   *operator.Schedule
	Density    *density.Reference
}

// Build creates the model and its schedule. rng is only used to draw a
// random starting tree.
func (c *Config) Build(rng *rand.Rand) (*Built, error) {
	b := &Built{}
	var err error

	t := c.Model.Tree
	if t.Newick != "" {
		b.Tree, err = tree.ParseNewick(t.Newick)
	} else {
		b.Tree, err = tree.Random(rng, t.Taxa, t.Rate)
	}
	if err != nil {
		return nil, fmt.Errorf("model.tree: %w", err)
	}
	terms := []density.Option{density.WithTree(b.Tree, t.Rate)}

	params := map[string]*param.Parameter{}
	for _, pc := range c.Model.Parameters {
		lower, upper := math.Inf(-1), math.Inf(1)
		if pc.Lower != nil {
			lower = *pc.Lower
		}
		if pc.Upper != nil {
			upper = *pc.Upper
		}
		p, err := param.New(pc.Name, pc.Values, param.WithBounds(lower, upper))
		if err != nil {
			return nil, fmt.Errorf("model.parameters: %w", err)
		}
		params[pc.Name] = p
		b.Parameters = append(b.Parameters, p)
		terms = append(terms, density.WithParameter(p, pc.Prior.build()))
	}
	b.Density = density.New(terms...)

	traits := map[string]*param.TipTraits{}
	for _, tc := range c.Model.Traits {
		tt, err := tc.build(b.Tree)
		if err != nil {
			return nil, err
		}
		traits[tc.Name] = tt
		b.Traits = append(b.Traits, tt)
	}

	b.Schedule, err = operator.NewSchedule()
	if err != nil {
		return nil, err
	}
	for i, oc := range c.Operators {
		op, err := oc.build(b, params, traits)
		if err != nil {
			return nil, fmt.Errorf("operators[%d]: %w", i, err)
		}
		if err := b.Schedule.Add(op); err != nil {
			return nil, fmt.Errorf("operators[%d]: %w", i, err)
		}
	}
	return b, nil
}

func (p Prior) build() density.Prior {
	switch p.Kind {
	case "lognormal":
		return density.LogNormal{Mu: p.Mu, Sigma: p.Sigma}
	case "normal":
		return density.Normal{Mu: p.Mu, Sigma: p.Sigma}
	default:
		return density.Uniform{}
	}
}

func (tc Trait) build(tr *tree.Tree) (*param.TipTraits, error) {
	for _, name := range slices.Sorted(maps.Keys(tc.States)) {
		if _, ok := tr.TipByName(name); !ok {
			return nil, fmt.Errorf("model.traits %q: unknown tip %q", tc.Name, name)
		}
	}
	states := make([][]int, tr.TipCount())
	for i := range states {
		name := tr.Tip(i).Name()
		s, ok := tc.States[name]
		if !ok {
			return nil, fmt.Errorf("model.traits %q: no states for tip %q", tc.Name, name)
		}
		states[i] = s
	}
	return param.NewTipTraits(tc.Name, states)
}

func (oc Operator) build(b *Built, params map[string]*param.Parameter, traits map[string]*param.TipTraits) (operator.Operator, error) {
	var mopts []moves.Option
	var copts []continuous.Option
	if oc.Name != "" {
		mopts = append(mopts, moves.WithName(oc.Name))
		copts = append(copts, continuous.WithName(oc.Name))
	}

	var op operator.Operator
	var err error
	switch oc.Type {
	case TypeNarrowExchange:
		op, err = moves.NewNarrowExchange(b.Tree, oc.Weight, mopts...)
	case TypeWideExchange:
		op, err = moves.NewWideExchange(b.Tree, oc.Weight, mopts...)
	case TypePruneRegraft:
		op, err = moves.NewFixedHeightPruneRegraft(b.Tree, oc.Weight, mopts...)
	case TypeUniformHeight:
		op, err = moves.NewUniformHeight(b.Tree, oc.Weight, mopts...)
	case TypeSubtreeJump:
		p, derr := oc.SubtreeJump()
		if derr != nil {
			return nil, derr
		}
		op, err = moves.NewSubtreeJump(b.Tree, oc.Weight, p.Size, mopts...)
	case TypeTipSwap:
		p, derr := oc.TipSwap()
		if derr != nil {
			return nil, derr
		}
		var views []ports.TipStates
		if len(p.Traits) == 0 {
			for _, tt := range b.Traits {
				views = append(views, tt)
			}
		}
		for _, name := range p.Traits {
			views = append(views, traits[name])
		}
		op, err = moves.NewTipSwap(oc.Weight, views, mopts...)
	case TypeScale:
		p, derr := oc.Scale()
		if derr != nil {
			return nil, derr
		}
		op, err = continuous.NewScale(params[p.Parameter], oc.Weight, p.Factor, copts...)
	case TypeRandomWalk:
		p, derr := oc.RandomWalk()
		if derr != nil {
			return nil, derr
		}
		op, err = continuous.NewRandomWalk(params[p.Parameter], oc.Weight, p.Window, copts...)
	default:
		return nil, fmt.Errorf("unknown operator type %q", oc.Type)
	}
	if err != nil {
		return nil, err
	}

	t, ok := op.(operator.Tunable)
	if !ok {
		return op, nil
	}
	return operator.NewAdaptive(t, oc.adaptOptions()...)
}

// adaptOptions maps the adapt block. Tunable operators adapt by default.
func (oc Operator) adaptOptions() []operator.AdaptiveOption {
	a := oc.Adapt
	if a == nil {
		return nil
	}
	var opts []operator.AdaptiveOption
	if a.Enabled != nil {
		opts = append(opts, operator.WithAdaptation(*a.Enabled))
	}
	if a.Target != 0 {
		opts = append(opts, operator.WithTarget(a.Target))
	}
	if a.Delay != 0 {
		opts = append(opts, operator.WithDelay(a.Delay))
	}
	switch a.Step.Kind {
	case "power":
		maxStep := a.Step.Max
		if maxStep == 0 {
			maxStep = 1
		}
		opts = append(opts, operator.WithStep(operator.Power{Kappa: a.Step.Kappa, Max: maxStep}))
	case "inverseSqrt":
		opts = append(opts, operator.WithStep(operator.CappedInverseSqrt{}))
	}
	return opts
}
