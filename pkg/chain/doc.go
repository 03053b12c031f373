/*
Package chain is a reference Metropolis-Hastings driver for the proposal
kernels of this module.

A Chain owns its trees, parameters, tip traits, operator schedule and random
source. Each Step selects an operator, lets it propose, evaluates the density
and accepts or rejects:

	c, err := chain.New(density, schedule, 42,
		chain.WithTrees(tr),
		chain.WithParameters(kappa),
	)
	if err != nil {
		return err
	}
	if err := c.Run(ctx, 10_000); err != nil {
		return err
	}

Structurally infeasible proposals are rejected without evaluating the
density. Fatal operator errors, such as tree.ErrInvalidStructure or
operator.ErrInconsistentState, stop the chain and are returned by Step.

A Chain is not safe for concurrent use. Independent chains may run in
parallel with RunAll. State, LogDensity, operator Stats and tuning values
may be read from other goroutines while a chain runs.
*/
package chain
