package moves

import (
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/tree"
)

type config struct {
	name string
}

// Option configures a move.
type Option func(*config)

// WithName overrides the default operator name. Names must be unique within
// a schedule, so chains with several trees name their moves.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

func setup(b *operator.Base, kind string, tr *tree.Tree, weight float64, opts []Option) error {
	c := config{name: kind}
	for _, opt := range opts {
		opt(&c)
	}
	if tr == nil {
		return operator.Invalid(c.name, "tree", "must not be nil", nil)
	}
	return b.Init(c.name, weight)
}
