package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/sprig/internal/presentation/graph"
	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMermaid(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,(C:1.5,D:1.5):0.5);")
	require.NoError(t, err)

	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes and Edges",
			contains: []string{
				"graph TD\n",
				`n0(["A"])`,
				`n1(["B"])`,
				`n4["h=1"]`,
				`n6(("h=2"))`,
				`n6 -- "1" --> n4`,
				`n4 -- "1" --> n0`,
				`n5 -- "1.5" --> n2`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Clade Overlay",
			contains: []string{
				"classDef clade",
				"class n5 clade;",
				"class n2 clade;",
				"class n3 clade;",
				"class n2 current;",
			},
			excludes: []string{"class n0 clade;", "class n6 clade;"},
		},
	}

	c, _ := tr.TipByName("C")
	tests[1].overlay = &graph.Overlay{Clade: c.Parent(), Current: c}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.Mermaid(tr, tt.overlay)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(got, s), "unexpected %q", s)
			}
		})
	}
}
