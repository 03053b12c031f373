package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/sprig"
	"github.com/aretw0/sprig/internal/logging"
	"github.com/aretw0/sprig/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <run.yaml>",
	Short: "Run the chains of a run file",
	Long: `Builds the replicate chains of the run file, runs them in parallel and
prints the operator analysis. Interrupting the run saves a checkpoint when a
store is configured; run again with --resume to continue.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := samplerOptions(cmd)
		if err != nil {
			return err
		}
		s, err := sprig.New(args[0], opts...)
		if err != nil {
			return err
		}
		defer s.Close()

		rich := isTerminal(os.Stdout)
		if noBanner, _ := cmd.Flags().GetBool("no-banner"); rich && !noBanner {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		// Handle SIGINT/SIGTERM
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runErr := s.Run(ctx)
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}

		report := tui.NewReport(cmd.OutOrStdout(), rich, terminalWidth(os.Stdout))
		for _, r := range s.Analysis() {
			if err := report.Chain(r.ID, r.State, r.Rows); err != nil {
				return err
			}
		}
		if runErr != nil {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return nil
	},
}

func samplerOptions(cmd *cobra.Command) ([]sprig.Option, error) {
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	var opts []sprig.Option
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		level, err := logging.ParseLevel(lvl)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sprig.WithLogger(logging.NewWriter(cmd.ErrOrStderr(), level, jsonLogs)))
	} else {
		opts = append(opts, sprig.WithLogOutput(cmd.ErrOrStderr(), jsonLogs))
	}
	if cmd.Flags().Changed("addr") {
		addr, _ := cmd.Flags().GetString("addr")
		opts = append(opts, sprig.WithDiagnostics(addr))
	}
	if cmd.Flags().Changed("resume") {
		resume, _ := cmd.Flags().GetBool("resume")
		opts = append(opts, sprig.WithResume(resume))
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("addr", "", "Serve diagnostics and /metrics on this address during the run")
	runCmd.Flags().Bool("resume", false, "Resume chains from their checkpoints")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
