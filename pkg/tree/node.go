package tree

// Node is a vertex of a Tree. Nodes are created with Leaf and Join and become
// owned by a Tree once passed to New; after that they are only changed through
// the owning tree.
type Node struct {
	index    int
	name     string
	height   float64
	rate     float64
	hasRate  bool
	parent   *Node
	children []*Node
}

// Leaf creates an unattached tip node.
func Leaf(name string, height float64) *Node {
	return &Node{index: -1, name: name, height: height}
}

// Join creates an unattached internal node with the two given children.
func Join(left, right *Node, height float64) *Node {
	n := &Node{index: -1, height: height, children: []*Node{left, right}}
	left.parent = n
	right.parent = n
	return n
}

// Index is the stable identity of the node within its tree. Tips occupy
// 0..TipCount-1 and internal nodes follow.
func (n *Node) Index() int { return n.index }

// Name returns the taxon name of a tip, or "" for internal nodes.
func (n *Node) Name() string { return n.name }

// Height returns the node age.
func (n *Node) Height() float64 { return n.height }

// Rate returns the rate attached to the node, if any.
func (n *Node) Rate() (float64, bool) { return n.rate, n.hasRate }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// ChildCount returns the number of children (0 or 2 in a valid tree).
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Sibling returns the other child of the node's parent, or nil for the root.
func (n *Node) Sibling() *Node {
	if n.parent == nil {
		return nil
	}
	for _, c := range n.parent.children {
		if c != n {
			return c
		}
	}
	return nil
}

// BranchLength returns the length of the edge above the node (0 for the root).
func (n *Node) BranchLength() float64 {
	if n.parent == nil {
		return 0
	}
	return n.parent.height - n.height
}

func (n *Node) hasChild(c *Node) bool {
	for _, x := range n.children {
		if x == c {
			return true
		}
	}
	return false
}

func (n *Node) maxChildHeight() float64 {
	h := 0.0
	for i, c := range n.children {
		if i == 0 || c.height > h {
			h = c.height
		}
	}
	return h
}
