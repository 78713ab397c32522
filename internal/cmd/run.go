package cmd

import (
	"fmt"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/Iron-Ham/planweave/internal/tui/planrun"
	"github.com/spf13/cobra"
)

var runStepsFile string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Step through a plan interactively",
	Long: `Run builds a plan and opens an interactive runner. The runner shows
the ready frontier, lets you mark steps complete or failed, answer the
predicates of conditional dependencies, and displays rollback actions
when a step fails.

The engine only decides what may run next; performing each step's actual
work is up to you.

Examples:
  planweave run approach.txt
  planweave run --steps steps.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runStepsFile, "steps", "", "build from a YAML step file instead of approach text")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := newLogger(cfg)
	defer log.Close()
	eng := newEngine(cfg, log)

	buildStepsFile = runStepsFile
	plan, result, err := buildPlan(eng, args)
	if err != nil {
		if out := renderValidation(result, cfg.Output.Color); out != "" {
			fmt.Fprint(cmd.ErrOrStderr(), out)
		}
		return fmt.Errorf("plan validation failed: %w", err)
	}

	return planrun.Run(eng, plan, log.WithComponent("tui"))
}
