// Package engine implements the plan decomposition and dependency-resolution
// engine. It converts an unstructured natural-language approach description
// into a validated, typed graph of executable steps and exposes a small
// stateless query/mutation API for driving execution of that graph.
//
// The engine computes what may run next; whether a ready step actually runs,
// and in parallel or not, is the caller's decision. The engine itself performs
// no I/O, holds no background resources, and is deterministic for identical
// input.
package engine

import "time"

// -----------------------------------------------------------------------------
// Step Types
// -----------------------------------------------------------------------------

// StepType classifies a step by the kind of work it represents.
//
// Types are inferred by the parser from a fixed, ordered keyword table. The
// declaration order below is the tie-break priority: when a clause scores
// equally against two types, the type declared earlier wins. This ordering is
// part of the parser contract so inference stays deterministic and testable.
type StepType string

const (
	// StepFileOperation covers creating, reading, writing, or deleting files.
	StepFileOperation StepType = "file_operation"

	// StepCommandExecution covers running shell commands or external programs.
	StepCommandExecution StepType = "command_execution"

	// StepCodeGeneration covers implementing or generating source code.
	// The Language field of the step carries the target language when one
	// could be inferred from the clause text.
	StepCodeGeneration StepType = "code_generation"

	// StepTestExecution covers running tests and verifying behavior.
	StepTestExecution StepType = "test_execution"

	// StepSystemConfiguration covers installing or configuring software.
	StepSystemConfiguration StepType = "system_configuration"

	// StepDataAnalysis covers computing, aggregating, or analyzing data.
	StepDataAnalysis StepType = "data_analysis"

	// StepManualConfirmation covers work requiring a human decision,
	// such as reviews and approvals.
	StepManualConfirmation StepType = "manual_confirmation"

	// StepToolInvocation is the default for imperative clauses that match
	// no keyword in the inference table.
	StepToolInvocation StepType = "tool_invocation"
)

// String returns the string representation of the step type.
func (t StepType) String() string {
	return string(t)
}

// IsValid returns true if this is a recognized step type.
func (t StepType) IsValid() bool {
	switch t {
	case StepFileOperation, StepCommandExecution, StepCodeGeneration,
		StepTestExecution, StepSystemConfiguration, StepDataAnalysis,
		StepManualConfirmation, StepToolInvocation:
		return true
	default:
		return false
	}
}

// BaseDuration returns the type-specific default duration used when a step
// carries no explicit estimate. Estimates are heuristic starting points, not
// guarantees.
func (t StepType) BaseDuration() time.Duration {
	switch t {
	case StepCodeGeneration:
		return 20 * time.Minute
	case StepDataAnalysis:
		return 15 * time.Minute
	case StepTestExecution, StepSystemConfiguration:
		return 10 * time.Minute
	case StepFileOperation, StepToolInvocation, StepManualConfirmation:
		return 5 * time.Minute
	case StepCommandExecution:
		return 3 * time.Minute
	default:
		return 5 * time.Minute
	}
}

// StepTypePriority lists every step type in inference tie-break order.
// Summaries group steps in this order as well, keeping output deterministic.
var StepTypePriority = []StepType{
	StepFileOperation,
	StepCommandExecution,
	StepCodeGeneration,
	StepTestExecution,
	StepSystemConfiguration,
	StepDataAnalysis,
	StepManualConfirmation,
	StepToolInvocation,
}

// -----------------------------------------------------------------------------
// Step Status and Outcomes
// -----------------------------------------------------------------------------

// StepStatus represents the lifecycle state of a single step.
//
// Valid transitions are Pending → Ready → Completed and Pending/Ready →
// Failed. Completed and Failed are terminal; the engine rejects any further
// mutation of a terminal step.
type StepStatus string

const (
	// StepPending indicates the step has unmet dependencies.
	StepPending StepStatus = "pending"

	// StepReady indicates every gating dependency of the step is satisfied.
	StepReady StepStatus = "ready"

	// StepCompleted indicates the caller reported the step finished.
	StepCompleted StepStatus = "completed"

	// StepFailed indicates the caller reported the step failed.
	StepFailed StepStatus = "failed"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s StepStatus) IsTerminal() bool {
	return s == StepCompleted || s == StepFailed
}

// Outcome is the terminal result a caller reports for an executed step.
type Outcome string

const (
	// OutcomeSuccess indicates the step finished successfully.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure indicates the step reached a terminal failure.
	OutcomeFailure Outcome = "failure"
)

// Succeeded returns true for a success outcome.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSuccess
}

// -----------------------------------------------------------------------------
// Step
// -----------------------------------------------------------------------------

// Step is one typed, independently trackable unit of work within a plan.
//
// Steps are pure data: the parser fills them in, the validator freezes them,
// and the caller's execution layer interprets them. A step's ID is
// content-addressed from its position and normalized text, so re-parsing
// byte-identical input yields identical IDs and re-planning stays idempotent.
type Step struct {
	// ID uniquely identifies this step within the plan.
	// Derived deterministically from the step's position and clause text.
	ID string `json:"id"`

	// Name is a short, human-readable label for the step.
	Name string `json:"name"`

	// Description is the full clause text the step was parsed from, or the
	// caller-supplied description for pre-segmented steps.
	Description string `json:"description"`

	// Type classifies the work this step represents.
	Type StepType `json:"type"`

	// Language is the inferred target language for code generation steps.
	// Empty for every other type.
	Language string `json:"language,omitempty"`

	// EstimatedDuration is the heuristic duration estimate, rounded to whole
	// minutes. Callers must not treat it as exact.
	EstimatedDuration time.Duration `json:"estimated_duration"`

	// Preconditions are free-text conditions extracted from the clause.
	// Informational only; they are never machine-evaluated.
	Preconditions []string `json:"preconditions,omitempty"`

	// ExpectedOutputs declares the output identifiers this step produces.
	// Data dependencies attach these to the dependent step's input context.
	ExpectedOutputs []string `json:"expected_outputs,omitempty"`

	// ValidationCriteria are human-checkable assertions for the step.
	// Never empty after validation: the validator injects a default
	// criterion when the parser produced none.
	ValidationCriteria []string `json:"validation_criteria"`

	// RollbackActions are compensating actions surfaced to the caller when
	// this step is marked failed after being started.
	RollbackActions []string `json:"rollback_actions,omitempty"`

	// Status is the current lifecycle state of the step.
	Status StepStatus `json:"status"`

	// Position is the zero-based parse-order index of the step. Readiness
	// results are ordered by position for determinism.
	Position int `json:"position"`
}

// Duration returns the step's estimate, falling back to the type default
// when no estimate was recorded.
func (s *Step) Duration() time.Duration {
	if s.EstimatedDuration > 0 {
		return s.EstimatedDuration
	}
	return s.Type.BaseDuration()
}

// HasCriteria returns true if the step carries at least one validation criterion.
func (s *Step) HasCriteria() bool {
	return len(s.ValidationCriteria) > 0
}
