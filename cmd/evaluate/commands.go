package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/meddoc/internal/evaluation"
)

const shutdownTimeout = 10 * time.Second

func runCMD() *cobra.Command {
	var mode string
	var verbose bool

	var run = &cobra.Command{
		Use:   "run",
		Short: "Evaluate every gold item and store the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, lc, err := newHarness(newLogger(verbose))
			if err != nil {
				return err
			}
			defer lc.Shutdown(shutdownTimeout)

			m, err := evaluation.ParseMode(mode, sys.DefaultMode())
			if err != nil {
				return err
			}

			report, err := sys.Run(cmd.Context(), m)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	run.Flags().StringVar(&mode, "mode", "", "with_hint or classify (default from config)")
	run.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	return run
}

func latestCMD() *cobra.Command {
	var latest = &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent stored report",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, lc, err := newHarness(newLogger(false))
			if err != nil {
				return err
			}
			defer lc.Shutdown(shutdownTimeout)

			report, err := sys.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	return latest
}

func datasetCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "dataset",
		Short: "Print the built-in gold dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), evaluation.Dataset())
		},
	}
}
