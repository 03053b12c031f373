package continuous

import (
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/param"
)

type config struct {
	name string
}

// Option configures an operator.
type Option func(*config)

// WithName overrides the default operator name, "<kind>(<parameter>)".
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

func setup(b *operator.Base, kind string, p *param.Parameter, weight float64, opts []Option) error {
	if p == nil {
		return operator.Invalid(kind, "parameter", "must not be nil", nil)
	}
	c := config{name: kind + "(" + p.Name() + ")"}
	for _, opt := range opts {
		opt(&c)
	}
	return b.Init(c.name, weight)
}

// undo remembers one overwritten value until the outcome is known.
type undo struct {
	pending bool
	index   int
	value   float64
}

func (u *undo) save(p *param.Parameter, i int) {
	u.pending, u.index, u.value = true, i, p.Value(i)
}

func (u *undo) restore(p *param.Parameter) {
	if u.pending {
		p.SetValue(u.index, u.value)
		u.pending = false
	}
}
