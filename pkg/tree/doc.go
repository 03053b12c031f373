/*
Package tree implements the mutable, rooted, bifurcating time tree that the
proposal operators edit.

Node heights are measured backwards in time from the present, so every
internal node is strictly older (higher) than both of its children.

# Editing

Topology changes go through an Edit transaction. While an edit is open the
graph may be transiently invalid; Commit validates the whole tree and either
keeps the changes or rolls back to the pre-edit snapshot and returns an error
wrapping ErrInvalidStructure:

	edit, err := t.BeginEdit()
	if err != nil {
		return err
	}
	defer edit.Abort() // no-op after a successful Commit

	edit.RemoveChild(parent, child)
	edit.AddChild(other, child)
	return edit.Commit()

Listeners registered with AddListener are notified after every committed
edit, height change and restore.
*/
package tree
