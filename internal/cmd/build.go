package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/Iron-Ham/planweave/internal/engine"
	"github.com/spf13/cobra"
)

var (
	buildStepsFile string
	buildJSON      bool
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Build and validate a plan from approach text",
	Long: `Build parses free-text approach description into a typed step graph,
validates it, and prints the result.

The approach text is read from the given file, or from stdin when no file
is provided. With --steps, a YAML step file is used instead and text
segmentation is skipped entirely.

Examples:
  planweave build approach.txt
  echo "1. Write the parser. 2. Test the parser." | planweave build
  planweave build --steps steps.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildStepsFile, "steps", "", "build from a YAML step file instead of approach text")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "print the validated plan as JSON")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := newLogger(cfg)
	defer log.Close()
	eng := newEngine(cfg, log)

	plan, result, err := buildPlan(eng, args)

	// Findings print even when validation fails; that is the point of
	// collecting all of them.
	if out := renderValidation(result, cfg.Output.Color); out != "" {
		fmt.Fprint(cmd.ErrOrStderr(), out)
	}
	if err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}

	if buildJSON || strings.EqualFold(cfg.Output.Format, "json") {
		return printPlanJSON(cmd.OutOrStdout(), plan)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderSummary(eng, plan, cfg.Output.Color))
	return nil
}

// buildPlan constructs a plan from the step file when --steps is set,
// otherwise from approach text read from the file argument or stdin.
func buildPlan(eng *engine.Engine, args []string) (*engine.Plan, *engine.ValidationResult, error) {
	if buildStepsFile != "" {
		sf, err := engine.LoadStepFile(buildStepsFile)
		if err != nil {
			return nil, nil, err
		}
		steps, deps, err := sf.Materialize()
		if err != nil {
			return nil, nil, err
		}
		return eng.BuildPlanFromSteps(steps, deps)
	}

	text, err := readApproach(args)
	if err != nil {
		return nil, nil, err
	}
	return eng.BuildPlan(text)
}

// readApproach reads approach text from the file argument or stdin.
// A "-" argument reads stdin explicitly.
func readApproach(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading approach file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading approach from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no approach text provided (pass a file or pipe text to stdin)")
	}
	return string(data), nil
}

func printPlanJSON(w io.Writer, plan *engine.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
