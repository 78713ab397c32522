package engine

import (
	"fmt"
	"strings"

	apperrors "github.com/Iron-Ham/planweave/internal/errors"
)

// DefaultCriterion is injected into any step that reaches validation with no
// validation criteria, so every validated step carries at least one.
const DefaultCriterion = "step completed successfully"

// -----------------------------------------------------------------------------
// Validation Messages
// -----------------------------------------------------------------------------

// ValidationSeverity represents the severity level of a validation message.
type ValidationSeverity string

const (
	// SeverityError indicates a blocking issue; the plan is not returned.
	SeverityError ValidationSeverity = "error"

	// SeverityWarning indicates a reviewable issue; the plan still validates.
	SeverityWarning ValidationSeverity = "warning"

	// SeverityInfo indicates informational feedback.
	SeverityInfo ValidationSeverity = "info"
)

// ValidationMessage is a single structured validation finding.
type ValidationMessage struct {
	// Severity indicates how critical this finding is.
	Severity ValidationSeverity `json:"severity"`

	// Message is a human-readable description of the finding.
	Message string `json:"message"`

	// StepID identifies the step this finding relates to.
	// Empty for plan-level findings.
	StepID string `json:"step_id,omitempty"`

	// RelatedIDs lists other step IDs involved in the finding.
	RelatedIDs []string `json:"related_ids,omitempty"`

	// Suggestion provides guidance on how to address the finding.
	Suggestion string `json:"suggestion,omitempty"`
}

// IsError returns true if this message is an error.
func (m *ValidationMessage) IsError() bool {
	return m.Severity == SeverityError
}

// ValidationResult contains every finding from one validation pass. All
// violated invariants are collected for diagnostics even though the returned
// error reports only the first failing check.
type ValidationResult struct {
	// IsValid is true if there are no errors (warnings allowed).
	IsValid bool `json:"is_valid"`

	// Messages contains all findings.
	Messages []ValidationMessage `json:"messages"`

	// ErrorCount is the number of error-level findings.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-level findings.
	WarningCount int `json:"warning_count"`
}

// HasErrors returns true if there are any error-level findings.
func (v *ValidationResult) HasErrors() bool {
	return v.ErrorCount > 0
}

func (v *ValidationResult) add(msg ValidationMessage) {
	v.Messages = append(v.Messages, msg)
	switch msg.Severity {
	case SeverityError:
		v.IsValid = false
		v.ErrorCount++
	case SeverityWarning:
		v.WarningCount++
	}
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

// Validate checks the structural soundness of a plan before it is handed to
// a caller. Checks run in a fixed order — duplicate ids, dangling dependency
// endpoints, self-loops, cycles — and the first failing check determines the
// returned error, while the result collects every violation for diagnostics.
//
// Steps with no validation criteria are not an error: the default criterion
// is injected. A plan that passes every check transitions to Validated;
// otherwise it must be discarded by the caller.
func Validate(plan *Plan) (*ValidationResult, error) {
	result := &ValidationResult{IsValid: true}

	if plan == nil || len(plan.Steps) == 0 {
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    "plan has no steps",
			Suggestion: "provide approach text or at least one step",
		})
		return result, apperrors.ErrEmptyPlan
	}

	firstErr := checkDuplicateIDs(plan, result)

	if err := checkDanglingReferences(plan, result); firstErr == nil {
		firstErr = err
	}
	if err := checkSelfDependencies(plan, result); firstErr == nil {
		firstErr = err
	}
	if err := checkCycle(plan, result); firstErr == nil {
		firstErr = err
	}

	checkAdvisories(plan, result)

	if firstErr != nil {
		return result, firstErr
	}

	injectDefaultCriteria(plan)
	plan.Status = PlanValidated
	return result, nil
}

// checkDuplicateIDs reports every step ID that appears more than once.
func checkDuplicateIDs(plan *Plan, result *ValidationResult) error {
	var firstErr error
	seen := make(map[string]bool, len(plan.Steps))
	reported := make(map[string]bool)

	for i := range plan.Steps {
		id := plan.Steps[i].ID
		if seen[id] && !reported[id] {
			reported[id] = true
			result.add(ValidationMessage{
				Severity:   SeverityError,
				Message:    fmt.Sprintf("duplicate step id '%s'", id),
				StepID:     id,
				Suggestion: "assign a unique id to each step",
			})
			if firstErr == nil {
				firstErr = apperrors.NewValidationError(apperrors.KindDuplicateID,
					fmt.Sprintf("id '%s' is used by more than one step", id)).WithStep(id)
			}
		}
		seen[id] = true
	}
	return firstErr
}

// checkDanglingReferences reports dependency endpoints with no step.
func checkDanglingReferences(plan *Plan, result *ValidationResult) error {
	var firstErr error
	ids := make(map[string]bool, len(plan.Steps))
	for i := range plan.Steps {
		ids[plan.Steps[i].ID] = true
	}

	for _, dep := range plan.Dependencies {
		for _, endpoint := range []string{dep.FromID, dep.ToID} {
			if ids[endpoint] {
				continue
			}
			result.add(ValidationMessage{
				Severity:   SeverityError,
				Message:    fmt.Sprintf("dependency %s references unknown step '%s'", dep.Key(), endpoint),
				StepID:     endpoint,
				RelatedIDs: []string{dep.FromID, dep.ToID},
				Suggestion: "remove the dependency or add the missing step",
			})
			if firstErr == nil {
				firstErr = apperrors.NewValidationError(apperrors.KindDanglingReference,
					fmt.Sprintf("dependency %s references a step that does not exist", dep.Key())).
					WithStep(endpoint).WithRelated(dep.FromID, dep.ToID)
			}
		}
	}
	return firstErr
}

// checkSelfDependencies reports edges that reference the same step twice.
func checkSelfDependencies(plan *Plan, result *ValidationResult) error {
	var firstErr error
	for _, dep := range plan.Dependencies {
		if !dep.IsSelfLoop() {
			continue
		}
		result.add(ValidationMessage{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("step '%s' depends on itself", dep.FromID),
			StepID:     dep.FromID,
			Suggestion: "remove the self-dependency",
		})
		if firstErr == nil {
			firstErr = apperrors.NewValidationError(apperrors.KindSelfDependency,
				"a step cannot depend on itself").WithStep(dep.FromID)
		}
	}
	return firstErr
}

// checkCycle reports a dependency cycle with its full path.
func checkCycle(plan *Plan, result *ValidationResult) error {
	cycle := plan.Graph().DetectCycle()
	if cycle == nil {
		return nil
	}

	result.add(ValidationMessage{
		Severity:   SeverityError,
		Message:    fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
		RelatedIDs: cycle,
		Suggestion: "remove one of the dependencies to break the cycle",
	})
	return apperrors.NewValidationError(apperrors.KindCyclicDependency,
		"the dependency relation contains a cycle").WithCycle(cycle).WithRelated(cycle...)
}

// checkAdvisories adds warning-level findings that do not block validation.
func checkAdvisories(plan *Plan, result *ValidationResult) {
	if plan.Degraded {
		result.add(ValidationMessage{
			Severity:   SeverityWarning,
			Message:    "plan was built from unstructured text; confidence is low",
			Suggestion: "rewrite the approach as an enumerated list of steps",
		})
	}

	for i := range plan.Steps {
		step := &plan.Steps[i]
		if strings.TrimSpace(step.Description) == "" {
			result.add(ValidationMessage{
				Severity:   SeverityWarning,
				Message:    "step has no description",
				StepID:     step.ID,
				Suggestion: "describe what the step does",
			})
		}
		if !step.HasCriteria() {
			result.add(ValidationMessage{
				Severity: SeverityInfo,
				Message:  "step has no validation criteria; the default will be injected",
				StepID:   step.ID,
			})
		}
	}
}

// injectDefaultCriteria fills the default criterion into every step that has
// none, upholding the non-empty criteria invariant for validated plans.
func injectDefaultCriteria(plan *Plan) {
	for i := range plan.Steps {
		if !plan.Steps[i].HasCriteria() {
			plan.Steps[i].ValidationCriteria = []string{DefaultCriterion}
		}
	}
}
