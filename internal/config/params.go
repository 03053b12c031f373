package config

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ScaleParams are the params of a scale operator.
type ScaleParams struct {
	Parameter string  `mapstructure:"parameter"`
	Factor    float64 `mapstructure:"factor"`
}

// RandomWalkParams are the params of a random walk.
type RandomWalkParams struct {
	Parameter string  `mapstructure:"parameter"`
	Window    float64 `mapstructure:"window"`
}

// SubtreeJumpParams are the params of a subtree jump.
type SubtreeJumpParams struct {
	Size float64 `mapstructure:"size"`
}

// TipSwapParams are the params of a tip swap. Traits lists the tip-state
// views to keep in sync; all traits are used when empty.
type TipSwapParams struct {
	Traits []string `mapstructure:"traits"`
}

// decode maps raw into out. Unknown keys are reported when strict is set.
func decode(raw map[string]any, out any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      strict,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Scale decodes the params of a scale operator. The factor defaults to 0.75.
func (op Operator) Scale() (ScaleParams, error) {
	p := ScaleParams{Factor: 0.75}
	return p, decode(op.Params, &p, true)
}

// RandomWalk decodes the params of a random walk. The window defaults to 1.
func (op Operator) RandomWalk() (RandomWalkParams, error) {
	p := RandomWalkParams{Window: 1}
	return p, decode(op.Params, &p, true)
}

// SubtreeJump decodes the params of a subtree jump. The size defaults to 1.
func (op Operator) SubtreeJump() (SubtreeJumpParams, error) {
	p := SubtreeJumpParams{Size: 1}
	return p, decode(op.Params, &p, true)
}

// TipSwap decodes the params of a tip swap.
func (op Operator) TipSwap() (TipSwapParams, error) {
	var p TipSwapParams
	return p, decode(op.Params, &p, true)
}

func (op Operator) tunable() bool {
	switch op.Type {
	case TypeScale, TypeRandomWalk, TypeSubtreeJump:
		return true
	}
	return false
}

// check validates params against the declared parameters and traits. Value
// ranges are left to the operator constructors.
func (op Operator) check(params, traits map[string]bool) error {
	var errs []error
	parameter := func(name string) {
		if name == "" {
			errs = append(errs, errors.New("params.parameter: required"))
		} else if !params[name] {
			errs = append(errs, fmt.Errorf("params.parameter: unknown parameter %q", name))
		}
	}

	switch op.Type {
	case TypeScale:
		p, err := op.Scale()
		errs = append(errs, err)
		parameter(p.Parameter)
	case TypeRandomWalk:
		p, err := op.RandomWalk()
		errs = append(errs, err)
		parameter(p.Parameter)
	case TypeSubtreeJump:
		_, err := op.SubtreeJump()
		errs = append(errs, err)
	case TypeTipSwap:
		p, err := op.TipSwap()
		errs = append(errs, err)
		if len(traits) == 0 {
			errs = append(errs, errors.New("no traits declared in model.traits"))
		}
		for _, name := range p.Traits {
			if !traits[name] {
				errs = append(errs, fmt.Errorf("params.traits: unknown trait %q", name))
			}
		}
	default:
		if len(op.Params) > 0 {
			errs = append(errs, fmt.Errorf("params: %s takes no params", op.Type))
		}
	}

	if op.Adapt != nil {
		if !op.tunable() {
			errs = append(errs, fmt.Errorf("adapt: %s has no tuning parameter", op.Type))
		}
		switch op.Adapt.Step.Kind {
		case "", "harmonic", "inverseSqrt":
		case "power":
			if !(op.Adapt.Step.Kappa > 0.5 && op.Adapt.Step.Kappa <= 1) {
				errs = append(errs, errors.New("adapt.step.kappa: must be in (0.5, 1]"))
			}
		default:
			errs = append(errs, fmt.Errorf("adapt.step.kind: unknown %q", op.Adapt.Step.Kind))
		}
	}
	return errors.Join(errs...)
}
