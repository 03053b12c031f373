package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNewick reads a rooted binary tree with branch lengths, e.g.
// "((A:1,B:1):1,(C:1,D:1):1);". Heights are derived from the branch lengths
// with the youngest tip placed at height 0. Missing lengths count as 0.
func ParseNewick(s string, opts ...Option) (*Tree, error) {
	p := &newickParser{src: strings.TrimSpace(s)}
	root, err := p.clade()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing input at offset %d", ErrNewick, p.pos)
	}

	// Depths are accumulated top-down, then flipped into heights.
	depth := make(map[*newickNode]float64)
	maxDepth := 0.0
	var walk func(n *newickNode, d float64)
	walk = func(n *newickNode, d float64) {
		depth[n] = d
		if d > maxDepth {
			maxDepth = d
		}
		for _, c := range n.children {
			walk(c, d+c.length)
		}
	}
	walk(root, 0)

	var build func(n *newickNode) (*Node, error)
	build = func(n *newickNode) (*Node, error) {
		h := maxDepth - depth[n]
		if h < 0 {
			h = 0
		}
		switch len(n.children) {
		case 0:
			if n.name == "" {
				return nil, fmt.Errorf("%w: unnamed tip", ErrNewick)
			}
			return Leaf(n.name, h), nil
		case 2:
			l, err := build(n.children[0])
			if err != nil {
				return nil, err
			}
			r, err := build(n.children[1])
			if err != nil {
				return nil, err
			}
			return Join(l, r, h), nil
		default:
			return nil, fmt.Errorf("%w: node with %d children is not binary", ErrNewick, len(n.children))
		}
	}
	top, err := build(root)
	if err != nil {
		return nil, err
	}
	return New(top, opts...)
}

type newickNode struct {
	name     string
	length   float64
	children []*newickNode
}

type newickParser struct {
	src string
	pos int
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '[':
			// comments and annotations such as [&rate=1]
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *newickParser) clade() (*newickNode, error) {
	p.skipSpace()
	n := &newickNode{}
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		for {
			c, err := p.clade()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, c)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("%w: unexpected end of input", ErrNewick)
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrNewick, p.src[p.pos], p.pos)
		}
	}
	p.skipSpace()
	n.name = p.label()
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && strings.IndexByte("0123456789.eE+-", p.src[p.pos]) >= 0 {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad branch length at offset %d: %v", ErrNewick, start, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: negative branch length %v", ErrNewick, v)
		}
		n.length = v
	}
	return n, nil
}

func (p *newickParser) label() string {
	if p.pos < len(p.src) && p.src[p.pos] == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], '\'')
		if end < 0 {
			s := p.src[p.pos+1:]
			p.pos = len(p.src)
			return s
		}
		s := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return s
	}
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("(),:;[ \t\n\r", p.src[p.pos]) < 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}

// Newick writes the tree with branch lengths.
func (t *Tree) Newick() string {
	var b strings.Builder
	writeNewick(&b, t.root)
	b.WriteByte(';')
	return b.String()
}

func writeNewick(b *strings.Builder, n *Node) {
	if n.IsLeaf() {
		if strings.ContainsAny(n.name, "(),:; \t[]") {
			b.WriteString("'" + n.name + "'")
		} else {
			b.WriteString(n.name)
		}
	} else {
		b.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewick(b, c)
		}
		b.WriteByte(')')
	}
	if n.parent != nil {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(n.BranchLength(), 'g', -1, 64))
	}
}

// Topology writes the tree without branch lengths, with the children of every
// node ordered by their smallest tip name, so that equal topologies produce
// equal strings.
func (t *Tree) Topology() string {
	var b strings.Builder
	writeTopology(&b, t.root)
	b.WriteByte(';')
	return b.String()
}

func writeTopology(b *strings.Builder, n *Node) string {
	if n.IsLeaf() {
		b.WriteString(n.name)
		return n.name
	}
	var parts [2]strings.Builder
	var keys [2]string
	for i, c := range n.children {
		keys[i] = writeTopology(&parts[i], c)
	}
	first, second := 0, 1
	if keys[1] < keys[0] {
		first, second = 1, 0
	}
	b.WriteByte('(')
	b.WriteString(parts[first].String())
	b.WriteByte(',')
	b.WriteString(parts[second].String())
	b.WriteByte(')')
	return keys[first]
}
