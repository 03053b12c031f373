package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sprig/pkg/tree"
)

// Overlay marks nodes of interest on the rendered tree.
type Overlay struct {
	// Clade highlights the node and every descendant of it.
	Clade *tree.Node
	// Current is emphasised on top of the clade styling.
	Current *tree.Node
}

// Mermaid produces a Mermaid flowchart of a tree, root at the top. Shapes:
// - Root: ((Circle))
// - Tip: (["Stadium"])
// - Internal: [Rectangle], labelled with the node height
// Edges carry branch lengths.
func Mermaid(t *tree.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		opener, closer := "[", "]"
		label := fmt.Sprintf("h=%s", formatHeight(n.Height()))
		switch {
		case n.IsRoot():
			opener, closer = "((", "))"
		case n.IsLeaf():
			opener, closer = "([", "])"
			label = escape(n.Name())
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(n), opener, label, closer)
		for i := 0; i < n.ChildCount(); i++ {
			c := n.Child(i)
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(n), formatHeight(c.BranchLength()), nodeID(c))
			walk(c)
		}
	}
	walk(t.Root())

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes
		sb.WriteString("    classDef clade fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.Clade != nil {
			var mark func(n *tree.Node)
			mark = func(n *tree.Node) {
				fmt.Fprintf(&sb, "    class %s clade;\n", nodeID(n))
				for i := 0; i < n.ChildCount(); i++ {
					mark(n.Child(i))
				}
			}
			mark(overlay.Clade)
		}
		if overlay.Current != nil {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func nodeID(n *tree.Node) string {
	return fmt.Sprintf("n%d", n.Index())
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func formatHeight(h float64) string {
	return fmt.Sprintf("%.4g", h)
}
