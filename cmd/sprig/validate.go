package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sprig"
)

var validateCmd = &cobra.Command{
	Use:   "validate <run.yaml>",
	Short: "Check a run file without sampling",
	Long:  `Parses the run file, builds every replicate and its operator schedule, and reports all problems found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sprig.New(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		for _, r := range s.Analysis() {
			fmt.Fprintf(out, "chain %s: %d operators\n", r.ID, len(r.Rows))
		}
		fmt.Fprintln(out, "Run file is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
