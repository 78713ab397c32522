package cmd

import (
	"fmt"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/spf13/cobra"
)

var summarizeStepsFile string

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Print the deterministic summary of a plan",
	Long: `Summarize builds a plan and prints its summary: steps grouped by type
in fixed priority order, plus the total and critical-path durations.

Identical inputs always produce identical summaries, so the output is
safe to diff or snapshot.

Examples:
  planweave summarize approach.txt
  planweave summarize --steps steps.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeStepsFile, "steps", "", "build from a YAML step file instead of approach text")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := newLogger(cfg)
	defer log.Close()
	eng := newEngine(cfg, log)

	// Reuse the build path so the two commands cannot drift.
	buildStepsFile = summarizeStepsFile
	plan, result, err := buildPlan(eng, args)
	if err != nil {
		if out := renderValidation(result, cfg.Output.Color); out != "" {
			fmt.Fprint(cmd.ErrOrStderr(), out)
		}
		return fmt.Errorf("plan validation failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), eng.Summarize(plan))
	return nil
}
