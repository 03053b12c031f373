// Package moves implements the tree-edit proposal kernels: narrow and wide
// exchange, fixed-height prune-regraft, subtree jump, uniform node height,
// and the tip-state swap.
//
// Every structural move follows the same shape: draw a target with the
// chain's random source, build the finite set of legal alternatives, return
// operator.Rejection() when it is empty (leaving the tree untouched), and
// otherwise apply the move inside a tree.Edit. A failed Commit is returned as
// a fatal error wrapping tree.ErrInvalidStructure.
package moves
