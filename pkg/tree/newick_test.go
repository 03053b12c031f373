package tree_test

import (
	"testing"

	"github.com/aretw0/sprig/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewick(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,(C:1.5,D:1.5):0.5);")
	require.NoError(t, err)

	a, _ := tr.TipByName("A")
	c, _ := tr.TipByName("C")
	assert.Equal(t, 0.0, a.Height())
	assert.Equal(t, 1.0, a.Parent().Height())
	assert.Equal(t, 1.5, c.Parent().Height())
	assert.Equal(t, 2.0, tr.Root().Height())
	assert.Equal(t, "((A,B),(C,D));", tr.Topology())
}

func TestParseNewick_TipDates(t *testing.T) {
	tr, err := tree.ParseNewick("(A:2,(B:0.5,C:1):0.5) [&R];")
	require.NoError(t, err)

	a, _ := tr.TipByName("A")
	b, _ := tr.TipByName("B")
	c, _ := tr.TipByName("C")
	assert.Equal(t, 0.0, a.Height(), "A is the deepest tip")
	assert.Equal(t, 1.0, b.Height())
	assert.Equal(t, 0.5, c.Height())
	assert.Equal(t, 1.5, b.Parent().Height())
}

func TestNewick_RoundTrip(t *testing.T) {
	src := "((A:1,B:1):1,('C D':1.5,E:1.5):0.5);"
	tr, err := tree.ParseNewick(src)
	require.NoError(t, err)
	assert.Equal(t, src, tr.Newick())

	again, err := tree.ParseNewick(tr.Newick())
	require.NoError(t, err)
	assert.Equal(t, tr.Export(), again.Export())
}

func TestParseNewick_Errors(t *testing.T) {
	cases := map[string]string{
		"unbalanced":   "((A:1,B:1):1;",
		"polytomy":     "(A:1,B:1,C:1);",
		"unnamed tip":  "(:1,B:1);",
		"bad length":   "(A:x,B:1);",
		"trailing":     "(A:1,B:1);junk",
		"zero-length":  "(A:0,B:0);",
		"single child": "((A:1):1,B:2);",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tree.ParseNewick(src)
			assert.Error(t, err)
		})
	}
}
