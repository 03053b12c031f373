package chain

import (
	"log/slog"

	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/ports"
	"github.com/aretw0/sprig/pkg/tree"
)

// Option configures a Chain.
type Option func(*Chain)

// WithID sets the chain identifier used for checkpoints, logs and metrics.
// A random UUID is used otherwise.
func WithID(id string) Option {
	return func(c *Chain) { c.id = id }
}

// WithTrees registers trees that are stored before every proposal and
// restored on rejection.
func WithTrees(trees ...*tree.Tree) Option {
	return func(c *Chain) { c.trees = append(c.trees, trees...) }
}

// WithParameters registers parameters that are stored before every proposal
// and restored on rejection.
func WithParameters(params ...*param.Parameter) Option {
	return func(c *Chain) { c.params = append(c.params, params...) }
}

// WithTraits registers tip traits so that they are captured by checkpoints.
// Operators that change them restore them themselves.
func WithTraits(traits ...*param.TipTraits) Option {
	return func(c *Chain) { c.traits = append(c.traits, traits...) }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// WithHooks configures lifecycle callbacks.
func WithHooks(hooks Hooks) Option {
	return func(c *Chain) { c.hooks = hooks }
}

// WithCheckpoints saves a checkpoint to store every n states.
func WithCheckpoints(store ports.CheckpointStore, every uint64) Option {
	return func(c *Chain) {
		c.store = store
		c.every = every
	}
}
