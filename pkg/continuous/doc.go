// Package continuous holds proposal kernels over real-valued parameters: the
// scale and random-walk operators, and the ZigZag bridge that hands full
// state vectors to a native sampler.
package continuous
