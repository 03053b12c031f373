package tree

import (
	"fmt"
	"math"
)

// EventKind classifies a ChangeEvent.
type EventKind int

const (
	// StructureChanged is fired after a committed edit.
	StructureChanged EventKind = iota
	// HeightChanged is fired after a single node height changed.
	HeightChanged
	// Restored is fired after the tree was reset to a stored state.
	Restored
	// RateChanged is fired after a node rate changed.
	RateChanged
)

func (k EventKind) String() string {
	switch k {
	case StructureChanged:
		return "structure"
	case HeightChanged:
		return "height"
	case Restored:
		return "restored"
	case RateChanged:
		return "rate"
	default:
		return "unknown"
	}
}

// ChangeEvent describes a mutation. Node is -1 when the whole tree changed.
type ChangeEvent struct {
	Kind EventKind
	Node int
}

// Listener receives change notifications.
type Listener func(ChangeEvent)

// State is a plain-data copy of the tree graph and heights, indexed by node.
type State struct {
	Root     int       `json:"root"`
	Parents  []int     `json:"parents"`
	Children [][]int   `json:"children"`
	Heights  []float64 `json:"heights"`
	// Rates holds the node rates that are set, by node index.
	Rates map[int]float64 `json:"rates,omitempty"`
}

// Tree is a rooted bifurcating time tree.
type Tree struct {
	nodes      []*Node
	tips       int
	root       *Node
	degenerate bool

	edit      *Edit
	stored    *State
	listeners []Listener
}

// Option configures a Tree.
type Option func(*Tree)

// AllowDegenerate permits zero-length branches (parent height equal to a
// child height). By default internal nodes must be strictly older.
func AllowDegenerate() Option {
	return func(t *Tree) {
		t.degenerate = true
	}
}

// New takes ownership of the nodes reachable from root, numbers them (tips in
// left-to-right order, then internal nodes in post-order) and validates the
// result. Tip names must be unique.
func New(root *Node, opts ...Option) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidStructure)
	}
	if root.parent != nil {
		return nil, fmt.Errorf("%w: root has a parent", ErrInvalidStructure)
	}

	t := &Tree{root: root}
	for _, opt := range opts {
		opt(t)
	}

	var tips, internal []*Node
	seen := make(map[*Node]bool)
	var visit func(n *Node) error
	visit = func(n *Node) error {
		if seen[n] {
			return fmt.Errorf("%w: cycle through node %q", ErrInvalidStructure, n.name)
		}
		seen[n] = true
		for _, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("%w: child link without matching parent link", ErrInvalidStructure)
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		if n.IsLeaf() {
			tips = append(tips, n)
		} else {
			internal = append(internal, n)
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(tips))
	for _, n := range tips {
		if names[n.name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTaxon, n.name)
		}
		names[n.name] = true
	}

	t.tips = len(tips)
	t.nodes = make([]*Node, 0, len(tips)+len(internal))
	t.nodes = append(t.nodes, tips...)
	t.nodes = append(t.nodes, internal...)
	for i, n := range t.nodes {
		n.index = i
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Node returns the node with the given index.
func (t *Tree) Node(i int) *Node { return t.nodes[i] }

// NodeCount returns the total number of nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// TipCount returns the number of tips.
func (t *Tree) TipCount() int { return t.tips }

// InternalCount returns the number of internal nodes, root included.
func (t *Tree) InternalCount() int { return len(t.nodes) - t.tips }

// Tip returns the i-th tip.
func (t *Tree) Tip(i int) *Node { return t.nodes[i] }

// Internal returns the i-th internal node.
func (t *Tree) Internal(i int) *Node { return t.nodes[t.tips+i] }

// TipByName returns the tip with the given taxon name.
func (t *Tree) TipByName(name string) (*Node, bool) {
	for _, n := range t.nodes[:t.tips] {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}

// Degenerate reports whether zero-length branches are allowed.
func (t *Tree) Degenerate() bool { return t.degenerate }

// AddListener registers a change listener.
func (t *Tree) AddListener(l Listener) {
	t.listeners = append(t.listeners, l)
}

func (t *Tree) fire(ev ChangeEvent) {
	for _, l := range t.listeners {
		l(ev)
	}
}

// SetHeight changes the height of one node. The new height must keep the
// node older than its children and younger than its parent. While an edit is
// open, heights change through Edit.SetHeight and this returns
// ErrEditInProgress.
func (t *Tree) SetHeight(n *Node, h float64) error {
	if t.edit != nil {
		return ErrEditInProgress
	}
	if err := t.checkHeight(n, h); err != nil {
		return err
	}
	n.height = h
	t.fire(ChangeEvent{Kind: HeightChanged, Node: n.index})
	return nil
}

// SetRate attaches a rate to a node. Rates must be finite and non-negative.
func (t *Tree) SetRate(n *Node, r float64) error {
	if t.edit != nil {
		return ErrEditInProgress
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return fmt.Errorf("%w: node %d rate %v", ErrInvalidStructure, n.index, r)
	}
	n.rate, n.hasRate = r, true
	t.fire(ChangeEvent{Kind: RateChanged, Node: n.index})
	return nil
}

func (t *Tree) checkHeight(n *Node, h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return fmt.Errorf("%w: node %d height %v", ErrInvalidStructure, n.index, h)
	}
	if !n.IsLeaf() && !t.older(h, n.maxChildHeight()) {
		return fmt.Errorf("%w: node %d height %v not above children", ErrInvalidStructure, n.index, h)
	}
	if n.parent != nil && !t.older(n.parent.height, h) {
		return fmt.Errorf("%w: node %d height %v not below parent", ErrInvalidStructure, n.index, h)
	}
	return nil
}

func (t *Tree) older(parent, child float64) bool {
	if t.degenerate {
		return parent >= child
	}
	return parent > child
}

// MRCA returns the most recent common ancestor of a and b.
func (t *Tree) MRCA(a, b *Node) *Node {
	marked := make([]bool, len(t.nodes))
	for n := a; n != nil; n = n.parent {
		marked[n.index] = true
	}
	for n := b; n != nil; n = n.parent {
		if marked[n.index] {
			return n
		}
	}
	return nil
}

// IsAncestor reports whether a is b or an ancestor of b.
func (t *Tree) IsAncestor(a, b *Node) bool {
	for n := b; n != nil; n = n.parent {
		if n == a {
			return true
		}
	}
	return false
}

// Export returns a copy of the current graph and heights.
func (t *Tree) Export() State {
	s := State{
		Root:     t.root.index,
		Parents:  make([]int, len(t.nodes)),
		Children: make([][]int, len(t.nodes)),
		Heights:  make([]float64, len(t.nodes)),
	}
	for i, n := range t.nodes {
		s.Parents[i] = -1
		if n.parent != nil {
			s.Parents[i] = n.parent.index
		}
		if len(n.children) > 0 {
			s.Children[i] = make([]int, len(n.children))
			for j, c := range n.children {
				s.Children[i][j] = c.index
			}
		}
		s.Heights[i] = n.height
		if n.hasRate {
			if s.Rates == nil {
				s.Rates = make(map[int]float64)
			}
			s.Rates[i] = n.rate
		}
	}
	return s
}

// Import replaces the graph and heights with s. The result is validated and
// the previous state is kept if s is not a valid tree.
func (t *Tree) Import(s State) error {
	if t.edit != nil {
		return ErrEditInProgress
	}
	prev := t.Export()
	if err := t.apply(s); err != nil {
		_ = t.apply(prev)
		return err
	}
	if err := t.Validate(); err != nil {
		_ = t.apply(prev)
		return err
	}
	t.fire(ChangeEvent{Kind: Restored, Node: -1})
	return nil
}

func (t *Tree) apply(s State) error {
	n := len(t.nodes)
	if len(s.Parents) != n || len(s.Children) != n || len(s.Heights) != n {
		return fmt.Errorf("%w: state has wrong node count", ErrInvalidStructure)
	}
	if s.Root < 0 || s.Root >= n {
		return fmt.Errorf("%w: root index %d out of range", ErrInvalidStructure, s.Root)
	}
	for i, node := range t.nodes {
		node.height = s.Heights[i]
		node.rate, node.hasRate = s.Rates[i]
		if node.hasRate && !(node.rate >= 0 && !math.IsInf(node.rate, 1)) {
			return fmt.Errorf("%w: node %d rate %v", ErrInvalidStructure, i, node.rate)
		}
		node.parent = nil
		if p := s.Parents[i]; p >= 0 {
			if p >= n {
				return fmt.Errorf("%w: parent index %d out of range", ErrInvalidStructure, p)
			}
			node.parent = t.nodes[p]
		}
		node.children = node.children[:0]
		for _, c := range s.Children[i] {
			if c < 0 || c >= n {
				return fmt.Errorf("%w: child index %d out of range", ErrInvalidStructure, c)
			}
			node.children = append(node.children, t.nodes[c])
		}
	}
	t.root = t.nodes[s.Root]
	return nil
}

// Store saves the current state so that Restore can return to it.
func (t *Tree) Store() {
	s := t.Export()
	t.stored = &s
}

// Restore returns the tree to the last stored state.
func (t *Tree) Restore() error {
	if t.stored == nil {
		return nil
	}
	if t.edit != nil {
		return ErrEditInProgress
	}
	if err := t.apply(*t.stored); err != nil {
		return err
	}
	t.fire(ChangeEvent{Kind: Restored, Node: -1})
	return nil
}
