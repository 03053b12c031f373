/*
Package operator defines the proposal-kernel abstraction of the MCMC core.

An Operator perturbs model state in place and reports the log Hastings ratio
of the move as a Result. A structurally infeasible move is a Result with
Rejected set, never an error; errors are reserved for fatal outcomes such as
a corrupted tree edit (see the tree package) or ErrInconsistentState.

Capabilities are composed rather than inherited:

  - Proposer: Name and Propose.
  - Operator: a Proposer with a weight, accept/reject hooks and Stats.
  - Tunable: an Operator exposing one transformed tuning value.
  - Gibbs: marker for moves the driver accepts without a Metropolis test.
  - AdaptiveOperator: a Tunable wrapped by the Robbins–Monro controller.

Every Propose call receives the chain's random source explicitly, so chains
are independently reproducible from their seeds.

A Schedule holds the weighted operators of one chain and selects the next
move in O(log k).
*/
package operator
