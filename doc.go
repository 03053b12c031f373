/*
Package sprig runs Markov chain Monte Carlo proposal kernels over rooted,
time-calibrated binary trees and real-valued parameters.

The building blocks live in sub-packages:

  - pkg/tree: the mutable tree and its invariant-checking edit transaction.
  - pkg/operator: the operator abstraction, the Robbins-Monro adaptive
    controller, the weighted schedule and the acceptance analysis.
  - pkg/moves: tree-edit proposals (narrow and wide exchange, fixed-height
    prune and regraft, subtree jump, uniform height, tip swap).
  - pkg/continuous: scale, random walk and the bridge to a native sampler.
  - pkg/chain: a reference Metropolis-Hastings driver with checkpoints.

This package wires them from a YAML run file, for command line use or for
embedding:

	s, err := sprig.New("run.yaml", sprig.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
	for _, r := range s.Analysis() {
		fmt.Println(operator.Markdown(r.Rows))
	}

Replicate chains run in parallel, each with its own copy of the model and a
seed derived from the run seed. With a checkpoint store configured, chains
save their state periodically and when the run is cancelled, and a later run
with resume set continues exactly where they stopped.
*/
package sprig
