package tree

import (
	"fmt"
	"math"
)

// Validate checks the global invariants: a single parentless root, matching
// parent and child links, no cycles, every node reachable, tips stay tips,
// internal nodes have exactly two children and are older than both.
func (t *Tree) Validate() error {
	if t.root == nil {
		return fmt.Errorf("%w: no root", ErrInvalidStructure)
	}
	if t.root.parent != nil {
		return fmt.Errorf("%w: root %d has a parent", ErrInvalidStructure, t.root.index)
	}
	if want := 2*t.tips - 1; len(t.nodes) != want {
		return fmt.Errorf("%w: %d nodes for %d tips", ErrInvalidStructure, len(t.nodes), t.tips)
	}

	for _, n := range t.nodes {
		if n != t.root && n.parent == nil {
			return fmt.Errorf("%w: node %d is detached", ErrInvalidStructure, n.index)
		}
		if n.parent != nil && !n.parent.hasChild(n) {
			return fmt.Errorf("%w: node %d is not a child of its parent %d", ErrInvalidStructure, n.index, n.parent.index)
		}
		if math.IsNaN(n.height) || math.IsInf(n.height, 0) || n.height < 0 {
			return fmt.Errorf("%w: node %d has height %v", ErrInvalidStructure, n.index, n.height)
		}

		isTip := n.index < t.tips
		switch {
		case isTip && len(n.children) != 0:
			return fmt.Errorf("%w: tip %d has children", ErrInvalidStructure, n.index)
		case !isTip && len(n.children) != 2:
			return fmt.Errorf("%w: internal node %d has %d children", ErrInvalidStructure, n.index, len(n.children))
		}

		for _, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("%w: child %d of node %d points elsewhere", ErrInvalidStructure, c.index, n.index)
			}
			if !t.older(n.height, c.height) {
				return fmt.Errorf("%w: node %d (%v) is not older than child %d (%v)",
					ErrInvalidStructure, n.index, n.height, c.index, c.height)
			}
		}
		if len(n.children) == 2 && n.children[0] == n.children[1] {
			return fmt.Errorf("%w: node %d lists the same child twice", ErrInvalidStructure, n.index)
		}
	}

	// Reachability from the root also rules out cycles, since every node has
	// at most one parent.
	visited := make([]bool, len(t.nodes))
	stack := []*Node{t.root}
	count := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n.index] {
			return fmt.Errorf("%w: cycle through node %d", ErrInvalidStructure, n.index)
		}
		visited[n.index] = true
		count++
		stack = append(stack, n.children...)
	}
	if count != len(t.nodes) {
		return fmt.Errorf("%w: %d of %d nodes reachable from root", ErrInvalidStructure, count, len(t.nodes))
	}
	return nil
}
