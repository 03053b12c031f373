// Package param holds the continuous and discrete model state that operators
// perturb besides the tree: bounded real parameters and per-tip trait vectors.
package param
