package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// A step file is the YAML form of a caller-supplied pre-segmented step list.
// When present, segmentation is skipped entirely; only type inference and
// default filling apply. Explicit ids are honored as-is, which lets callers
// exercise (and trip over) the duplicate-id check.
//
// Format:
//
//	steps:
//	  - id: fetch          # optional; content-addressed when omitted
//	    name: Fetch data
//	    description: Fetch the dataset from the warehouse
//	    type: data_analysis      # optional; inferred when omitted
//	    duration_minutes: 10     # optional; heuristic when omitted
//	    outputs: [dataset]
//	    criteria: ["dataset row count > 0"]
//	    rollback: ["delete partial download"]
//	    depends_on:
//	      - id: credentials
//	        kind: strict         # strict | weak | conditional | data
//	        predicate: "rows > 0"  # conditional only

// StepFile is the parsed form of a step file.
type StepFile struct {
	Steps []StepFileEntry `yaml:"steps"`
}

// StepFileEntry is one step declaration in a step file.
type StepFileEntry struct {
	ID              string              `yaml:"id"`
	Name            string              `yaml:"name"`
	Description     string              `yaml:"description"`
	Type            string              `yaml:"type"`
	DurationMinutes int                 `yaml:"duration_minutes"`
	Preconditions   []string            `yaml:"preconditions"`
	Outputs         []string            `yaml:"outputs"`
	Criteria        []string            `yaml:"criteria"`
	Rollback        []string            `yaml:"rollback"`
	DependsOn       []StepFileDependsOn `yaml:"depends_on"`
}

// StepFileDependsOn is one dependency declaration on a step-file entry.
type StepFileDependsOn struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"`
	Predicate string `yaml:"predicate"`
}

// LoadStepFile reads and parses a step file from disk.
func LoadStepFile(path string) (*StepFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading step file: %w", err)
	}
	return ParseStepFile(data)
}

// ParseStepFile parses step-file YAML bytes.
func ParseStepFile(data []byte) (*StepFile, error) {
	var sf StepFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing step file YAML: %w", err)
	}
	if len(sf.Steps) == 0 {
		return nil, fmt.Errorf("step file has no steps")
	}
	return &sf, nil
}

// Materialize converts the file entries into draft steps and dependency
// edges for BuildPlanFromSteps. Dependency references use the entry's
// declared id when present, otherwise the id the entry will receive from
// content addressing; forward references are resolved in a second pass.
func (sf *StepFile) Materialize() ([]Step, []Dependency, error) {
	steps := make([]Step, 0, len(sf.Steps))
	for i, entry := range sf.Steps {
		step := Step{
			ID:                 entry.ID,
			Name:               entry.Name,
			Description:        entry.Description,
			Preconditions:      entry.Preconditions,
			ExpectedOutputs:    entry.Outputs,
			ValidationCriteria: entry.Criteria,
			RollbackActions:    entry.Rollback,
			Position:           i,
		}
		if entry.Type != "" {
			step.Type = StepType(entry.Type)
			if !step.Type.IsValid() {
				return nil, nil, fmt.Errorf("step %d: unknown type %q", i, entry.Type)
			}
		}
		if entry.DurationMinutes > 0 {
			step.EstimatedDuration = time.Duration(entry.DurationMinutes) * time.Minute
		}
		steps = append(steps, step)
	}

	var deps []Dependency
	for i, entry := range sf.Steps {
		for _, d := range entry.DependsOn {
			kind := KindStrict
			if d.Kind != "" {
				kind = DependencyKind(d.Kind)
				if !kind.IsValid() {
					return nil, nil, fmt.Errorf("step %d: unknown dependency kind %q", i, d.Kind)
				}
			}
			if kind != KindConditional && d.Predicate != "" {
				return nil, nil, fmt.Errorf("step %d: predicate is only valid on conditional dependencies", i)
			}
			deps = append(deps, Dependency{
				FromID:    d.ID,
				ToID:      entryID(sf.Steps[i], i),
				Kind:      kind,
				Predicate: d.Predicate,
			})
		}
	}
	return steps, deps, nil
}

// entryID mirrors the id a step-file entry receives after default filling.
func entryID(entry StepFileEntry, index int) string {
	if entry.ID != "" {
		return entry.ID
	}
	text := entry.Description
	if text == "" {
		text = entry.Name
	}
	return StepID(index, text)
}
