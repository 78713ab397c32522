// Package errors provides centralized error definitions and error handling
// utilities for the planweave codebase. It defines the engine's error
// taxonomy, error constructors with context, and classification helpers.
//
// # Error Types
//
// Two categories of errors exist:
//
// ValidationError is fatal to plan construction. A plan that fails
// validation is discarded and the error is returned to the caller verbatim:
//   - KindDuplicateID: two steps share an identifier
//   - KindDanglingReference: a dependency references a missing step
//   - KindSelfDependency: a step depends on itself
//   - KindCyclicDependency: the dependency relation contains a cycle
//
// StateError is always a caller programming error against the plan's
// mutation API, never retried internally:
//   - KindUnknownStepID: the step ID is not present in the plan
//   - KindAlreadyTerminal: the step already reached a terminal status
//
// # Usage
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDependencyCycle) { ... }
//
//	var verr *errors.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.CyclePath)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Validation-related sentinel errors
var (
	// ErrEmptyPlan indicates a plan with no steps was submitted for validation.
	ErrEmptyPlan = New("plan has no steps")
	// ErrDuplicateStepID indicates two steps share an identifier.
	ErrDuplicateStepID = New("duplicate step id")
	// ErrDanglingDependency indicates a dependency references a missing step.
	ErrDanglingDependency = New("dependency references unknown step")
	// ErrSelfDependency indicates a step depends on itself.
	ErrSelfDependency = New("step depends on itself")
	// ErrDependencyCycle indicates a circular dependency between steps.
	ErrDependencyCycle = New("dependency cycle detected")
)

// State-related sentinel errors
var (
	// ErrUnknownStepID indicates a mutation referenced a step not in the plan.
	ErrUnknownStepID = New("unknown step id")
	// ErrStepAlreadyTerminal indicates a mutation targeted a completed or failed step.
	ErrStepAlreadyTerminal = New("step already in a terminal state")
	// ErrPlanNotValidated indicates a mutation was attempted before validation.
	ErrPlanNotValidated = New("plan has not been validated")
	// ErrPlanTerminal indicates a mutation was attempted on a finished plan.
	ErrPlanTerminal = New("plan already in a terminal state")
)

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ValidationKind identifies which structural invariant a plan violated.
type ValidationKind string

const (
	// KindDuplicateID reports duplicate step identifiers.
	KindDuplicateID ValidationKind = "duplicate_id"
	// KindDanglingReference reports a dependency endpoint with no step.
	KindDanglingReference ValidationKind = "dangling_reference"
	// KindSelfDependency reports a self-loop edge.
	KindSelfDependency ValidationKind = "self_dependency"
	// KindCyclicDependency reports a cycle in the dependency relation.
	KindCyclicDependency ValidationKind = "cyclic_dependency"
)

// sentinel maps a validation kind to its sentinel error for errors.Is support.
func (k ValidationKind) sentinel() error {
	switch k {
	case KindDuplicateID:
		return ErrDuplicateStepID
	case KindDanglingReference:
		return ErrDanglingDependency
	case KindSelfDependency:
		return ErrSelfDependency
	case KindCyclicDependency:
		return ErrDependencyCycle
	default:
		return nil
	}
}

// ValidationError reports a structural invariant violation that is fatal to
// plan construction.
//
// Example:
//
//	err := errors.NewValidationError(errors.KindCyclicDependency, "cycle between steps").
//	    WithCycle([]string{"a", "b", "a"})
type ValidationError struct {
	// Kind identifies the violated invariant.
	Kind ValidationKind
	// StepID is the step the violation relates to, when applicable.
	StepID string
	// RelatedIDs lists other step IDs involved in the violation.
	RelatedIDs []string
	// CyclePath is the dependency cycle, in order, for KindCyclicDependency.
	CyclePath []string

	message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, message: message}
}

// WithStep adds the offending step ID to the error context.
func (e *ValidationError) WithStep(id string) *ValidationError {
	e.StepID = id
	return e
}

// WithRelated adds related step IDs to the error context.
func (e *ValidationError) WithRelated(ids ...string) *ValidationError {
	e.RelatedIDs = append(e.RelatedIDs, ids...)
	return e
}

// WithCycle records the cycle path for cyclic dependency errors.
func (e *ValidationError) WithCycle(path []string) *ValidationError {
	e.CyclePath = path
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.StepID != "" {
		parts = append(parts, fmt.Sprintf("step=%s", e.StepID))
	}
	if len(e.CyclePath) > 0 {
		parts = append(parts, fmt.Sprintf("cycle=%s", strings.Join(e.CyclePath, " -> ")))
	}

	prefix := fmt.Sprintf("validation error (%s)", e.Kind)
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is reports whether this error matches the target. It matches other
// ValidationErrors of the same kind and the kind's sentinel error.
func (e *ValidationError) Is(target error) bool {
	if other, ok := target.(*ValidationError); ok {
		return other.Kind == e.Kind
	}
	if s := e.Kind.sentinel(); s != nil {
		return errors.Is(target, s)
	}
	return false
}

// -----------------------------------------------------------------------------
// State Errors
// -----------------------------------------------------------------------------

// StateKind identifies which mutation rule a caller violated.
type StateKind string

const (
	// KindUnknownStepID reports a mutation against a step not in the plan.
	KindUnknownStepID StateKind = "unknown_step_id"
	// KindAlreadyTerminal reports a mutation against a terminal step.
	KindAlreadyTerminal StateKind = "already_terminal"
)

// sentinel maps a state kind to its sentinel error for errors.Is support.
func (k StateKind) sentinel() error {
	switch k {
	case KindUnknownStepID:
		return ErrUnknownStepID
	case KindAlreadyTerminal:
		return ErrStepAlreadyTerminal
	default:
		return nil
	}
}

// StateError reports an invalid query or mutation against a plan's
// completion state.
//
// Example:
//
//	err := errors.NewStateError(errors.KindAlreadyTerminal, "step-abc", "completed")
type StateError struct {
	// Kind identifies the violated rule.
	Kind StateKind
	// StepID is the step the caller referenced.
	StepID string
	// Status is the step's current status, for already-terminal errors.
	Status string
}

// NewStateError creates a new StateError.
func NewStateError(kind StateKind, stepID, status string) *StateError {
	return &StateError{Kind: kind, StepID: stepID, Status: status}
}

// Error returns the formatted error message.
func (e *StateError) Error() string {
	switch e.Kind {
	case KindUnknownStepID:
		return fmt.Sprintf("state error: step '%s' not found in plan", e.StepID)
	case KindAlreadyTerminal:
		return fmt.Sprintf("state error: step '%s' is already %s", e.StepID, e.Status)
	default:
		return fmt.Sprintf("state error: step '%s'", e.StepID)
	}
}

// Is reports whether this error matches the target. It matches other
// StateErrors of the same kind and the kind's sentinel error.
func (e *StateError) Is(target error) bool {
	if other, ok := target.(*StateError); ok {
		return other.Kind == e.Kind
	}
	if s := e.Kind.sentinel(); s != nil {
		return errors.Is(target, s)
	}
	return false
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsValidation returns true if the error is a plan validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return As(err, &verr)
}

// IsState returns true if the error is a completion-state error.
func IsState(err error) bool {
	var serr *StateError
	return As(err, &serr)
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "building plan")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
