/*
Package ports defines the driven ports (interfaces) of the sprig operator core.

These interfaces decouple the proposal kernels and the reference chain from
the collaborators that live outside this module: the posterior evaluator, the
native continuous-parameter sampler, tip-data likelihood views and checkpoint
persistence.

# Key Interfaces

  - Density: evaluates the log posterior of the current model state.
  - ContinuousSampler: opaque, synchronous zig-zag/HMC integrator.
  - GradientProvider: gradient of the log density for the sampler.
  - TipStates: a view of per-tip observed states.
  - CheckpointStore: persists and loads chain checkpoints.
  - ChainLocker: keeps a chain ID owned by one process at a time.
*/
package ports
