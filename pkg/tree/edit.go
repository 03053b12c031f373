package tree

import "fmt"

// Edit is an open structural transaction on a Tree. The first misuse
// (removing a non-child, overfilling a node, ...) is remembered and reported
// by Commit, so callers can issue a sequence of calls and check once.
type Edit struct {
	tree    *Tree
	before  State
	err     error
	done    bool
	touched bool
}

// BeginEdit opens an edit transaction. Only one edit may be open at a time.
func (t *Tree) BeginEdit() (*Edit, error) {
	if t.edit != nil {
		return nil, ErrEditInProgress
	}
	e := &Edit{tree: t, before: t.Export()}
	t.edit = e
	return e, nil
}

func (e *Edit) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidStructure}, args...)...)
	}
}

func (e *Edit) usable() bool {
	if e.done {
		if e.err == nil {
			e.err = ErrNotEditing
		}
		return false
	}
	return true
}

// RemoveChild detaches child from parent.
func (e *Edit) RemoveChild(parent, child *Node) {
	if !e.usable() {
		return
	}
	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			child.parent = nil
			e.touched = true
			return
		}
	}
	e.fail("node %d is not a child of %d", child.index, parent.index)
}

// AddChild attaches child under parent. The child must be detached and the
// parent must have a free slot.
func (e *Edit) AddChild(parent, child *Node) {
	if !e.usable() {
		return
	}
	switch {
	case child.parent != nil:
		e.fail("node %d already has parent %d", child.index, child.parent.index)
	case len(parent.children) >= 2:
		e.fail("node %d already has two children", parent.index)
	case parent == child:
		e.fail("node %d cannot be its own child", parent.index)
	default:
		parent.children = append(parent.children, child)
		child.parent = parent
		e.touched = true
	}
}

// SetRoot makes n the root of the tree.
func (e *Edit) SetRoot(n *Node) {
	if !e.usable() {
		return
	}
	e.tree.root = n
	e.touched = true
}

// SetHeight changes a height inside the transaction; ordering is checked at
// Commit.
func (e *Edit) SetHeight(n *Node, h float64) {
	if !e.usable() {
		return
	}
	n.height = h
	e.touched = true
}

// Commit validates the tree and closes the transaction. On failure the tree is
// rolled back to its state at BeginEdit and the returned error wraps
// ErrInvalidStructure.
func (e *Edit) Commit() error {
	if e.done {
		return ErrNotEditing
	}
	e.done = true
	e.tree.edit = nil

	err := e.err
	if err == nil {
		err = e.tree.Validate()
	}
	if err != nil {
		if rerr := e.tree.apply(e.before); rerr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rerr)
		}
		return err
	}
	if e.touched {
		e.tree.fire(ChangeEvent{Kind: StructureChanged, Node: -1})
	}
	return nil
}

// Abort discards the changes made in the transaction. It is a no-op once the
// transaction has been committed or aborted.
func (e *Edit) Abort() {
	if e.done {
		return
	}
	e.done = true
	e.tree.edit = nil
	_ = e.tree.apply(e.before)
}
