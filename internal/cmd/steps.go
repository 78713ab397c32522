package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/Iron-Ham/planweave/internal/engine"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

var (
	stepsStepsFile string
	stepsMatch     string
	stepsType      string
	stepsLong      bool
)

var stepsCmd = &cobra.Command{
	Use:   "steps [file]",
	Short: "List the steps of a plan",
	Long: `Steps builds a plan and lists its steps in parse order, one per line.

Use --match to filter by a glob pattern against the step name or id, and
--type to filter by step type. With --long, each step's dependencies,
expected outputs, and validation criteria are printed as well.

Examples:
  planweave steps approach.txt
  planweave steps approach.txt --type code_generation
  planweave steps approach.txt --match 'step-*' --long`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSteps,
}

func init() {
	rootCmd.AddCommand(stepsCmd)

	stepsCmd.Flags().StringVar(&stepsStepsFile, "steps", "", "build from a YAML step file instead of approach text")
	stepsCmd.Flags().StringVarP(&stepsMatch, "match", "m", "", "glob pattern matched against step name or id")
	stepsCmd.Flags().StringVarP(&stepsType, "type", "t", "", "only list steps of this type")
	stepsCmd.Flags().BoolVarP(&stepsLong, "long", "l", false, "print dependencies, outputs, and criteria per step")
}

func runSteps(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := newLogger(cfg)
	defer log.Close()
	eng := newEngine(cfg, log)

	buildStepsFile = stepsStepsFile
	plan, result, err := buildPlan(eng, args)
	if err != nil {
		if out := renderValidation(result, cfg.Output.Color); out != "" {
			fmt.Fprint(cmd.ErrOrStderr(), out)
		}
		return fmt.Errorf("plan validation failed: %w", err)
	}

	var matcher glob.Glob
	if stepsMatch != "" {
		matcher, err = glob.Compile(stepsMatch)
		if err != nil {
			return fmt.Errorf("invalid --match pattern: %w", err)
		}
	}

	var typeFilter engine.StepType
	if stepsType != "" {
		typeFilter = engine.StepType(stepsType)
		if !typeFilter.IsValid() {
			return fmt.Errorf("unknown step type %q", stepsType)
		}
	}

	out := cmd.OutOrStdout()
	for i := range plan.Steps {
		step := &plan.Steps[i]
		if typeFilter != "" && step.Type != typeFilter {
			continue
		}
		if matcher != nil && !matcher.Match(step.Name) && !matcher.Match(step.ID) {
			continue
		}

		id := styled(cfg.Output.Color, idStyle, step.ID)
		fmt.Fprintf(out, "%s  %s  %s\n", id, step.Type, step.Name)

		if stepsLong {
			printStepDetail(out, plan, step)
		}
	}
	return nil
}

func printStepDetail(out io.Writer, plan *engine.Plan, step *engine.Step) {
	var deps []string
	for _, d := range plan.Dependencies {
		if d.ToID == step.ID {
			deps = append(deps, fmt.Sprintf("%s (%s)", d.FromID, d.Kind))
		}
	}
	if len(deps) > 0 {
		fmt.Fprintf(out, "    depends on: %s\n", strings.Join(deps, ", "))
	}
	if len(step.ExpectedOutputs) > 0 {
		fmt.Fprintf(out, "    outputs:    %s\n", strings.Join(step.ExpectedOutputs, ", "))
	}
	if len(step.ValidationCriteria) > 0 {
		fmt.Fprintf(out, "    criteria:   %s\n", strings.Join(step.ValidationCriteria, "; "))
	}
	fmt.Fprintf(out, "    duration:   %dm\n", int(step.Duration().Minutes()))
}
