package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sprig"
	"github.com/aretw0/sprig/internal/presentation/graph"
	"github.com/aretw0/sprig/pkg/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree <run.yaml>",
	Short: "Print the starting tree of a run",
	Long: `Builds the first replicate of the run file and prints its starting tree,
either as Newick or as a Mermaid flowchart. --clade highlights the smallest
clade containing the given tips.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sprig.New(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		trees := s.Chains()[0].Trees()
		if len(trees) == 0 {
			return fmt.Errorf("run has no tree")
		}
		t := trees[0]

		format, _ := cmd.Flags().GetString("format")
		clade, _ := cmd.Flags().GetStringSlice("clade")
		out := cmd.OutOrStdout()
		switch format {
		case "newick":
			fmt.Fprintln(out, t.Newick())
		case "mermaid":
			var overlay *graph.Overlay
			if len(clade) > 0 {
				n, err := mrca(t, clade)
				if err != nil {
					return err
				}
				overlay = &graph.Overlay{Clade: n}
			}
			fmt.Fprint(out, graph.Mermaid(t, overlay))
		default:
			return fmt.Errorf("unknown format %q (want newick or mermaid)", format)
		}
		return nil
	},
}

func mrca(t *tree.Tree, names []string) (*tree.Node, error) {
	var n *tree.Node
	for _, name := range names {
		tip, ok := t.TipByName(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown tip %q", name)
		}
		if n == nil {
			n = tip
			continue
		}
		n = t.MRCA(n, tip)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().String("format", "newick", "Output format: newick or mermaid")
	treeCmd.Flags().StringSlice("clade", nil, "Tips whose common ancestor clade is highlighted (mermaid only)")
}
