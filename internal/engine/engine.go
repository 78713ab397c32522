package engine

import (
	"time"

	"github.com/Iron-Ham/planweave/internal/logging"
)

// Engine is the facade the surrounding system drives: it turns approach text
// (or a caller-supplied step list) into a validated plan and exposes the
// query/mutation API for executing it.
//
// The engine is stateless between calls; every method is a synchronous,
// in-memory computation with no I/O and no suspension points. All
// concurrency belongs to the caller.
type Engine struct {
	parser *Parser
	log    *logging.Logger
}

// New creates an engine with the given parser options.
func New(opts ParserOptions, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Engine{
		parser: NewParser(opts),
		log:    log.WithComponent("engine"),
	}
}

// BuildPlan parses approach text, builds the dependency graph, and validates
// the result. On success the returned plan is Validated and ready for the
// execution API. On a validation failure the plan is not returned; the
// ValidationResult still carries every finding for diagnostics.
func (e *Engine) BuildPlan(text string) (*Plan, *ValidationResult, error) {
	parsed := e.parser.Parse(text)

	plan := NewPlan(text, parsed.Steps, parsed.Dependencies)
	plan.Degraded = parsed.Degraded
	plan.Warnings = parsed.Warnings

	result, err := Validate(plan)
	if err != nil {
		e.log.Warn("plan validation failed", "error", err, "steps", len(parsed.Steps))
		return nil, result, err
	}

	e.log.Info("plan built",
		"plan_id", plan.ID,
		"steps", plan.StepCount(),
		"dependencies", len(plan.Dependencies),
		"degraded", plan.Degraded)
	return plan, result, nil
}

// BuildPlanFromSteps builds a plan from a caller-supplied pre-segmented step
// list, skipping segmentation. Type inference and default filling still
// apply: steps with no type are inferred from their text, missing ids are
// content-addressed from position and text, and missing durations fall back
// to the type heuristic.
func (e *Engine) BuildPlanFromSteps(steps []Step, deps []Dependency) (*Plan, *ValidationResult, error) {
	for i := range steps {
		fillStepDefaults(&steps[i], i, e.parser)
	}

	plan := NewPlan("", steps, deps)
	result, err := Validate(plan)
	if err != nil {
		e.log.Warn("plan validation failed", "error", err, "steps", len(steps))
		return nil, result, err
	}

	e.log.Info("plan built from supplied steps",
		"plan_id", plan.ID, "steps", plan.StepCount())
	return plan, result, nil
}

// fillStepDefaults applies inference and default filling to one
// caller-supplied step.
func fillStepDefaults(s *Step, index int, parser *Parser) {
	text := s.Description
	if text == "" {
		text = s.Name
	}

	if !s.Type.IsValid() {
		s.Type = inferType(text)
	}
	if s.Type == StepCodeGeneration && s.Language == "" {
		s.Language = inferLanguage(text)
	}
	if s.ID == "" {
		s.ID = StepID(index, text)
	}
	if s.Name == "" {
		s.Name = stepName(text)
	}
	if s.EstimatedDuration <= 0 {
		s.EstimatedDuration = parser.estimateDuration(s.Type, text)
	}
	if s.Status == "" {
		s.Status = StepPending
	}
	s.Position = index
}

// ReadySteps computes the ready frontier of a plan for the caller's
// completion state.
func (e *Engine) ReadySteps(plan *Plan, q ReadyQuery) []ReadyStep {
	return plan.ReadySteps(q)
}

// MarkComplete records a terminal outcome for a step.
func (e *Engine) MarkComplete(plan *Plan, id string, outcome Outcome) error {
	if err := plan.MarkComplete(id, outcome); err != nil {
		return err
	}
	e.log.Debug("step outcome recorded", "plan_id", plan.ID, "step", id, "outcome", outcome)
	return nil
}

// MarkFailed records a failure for a step and returns its rollback actions.
func (e *Engine) MarkFailed(plan *Plan, id string) ([]string, error) {
	rollback, err := plan.MarkFailed(id)
	if err != nil {
		return nil, err
	}
	e.log.Debug("step failed", "plan_id", plan.ID, "step", id, "rollback_actions", len(rollback))
	return rollback, nil
}

// CriticalDuration returns the plan's critical-path duration.
func (e *Engine) CriticalDuration(plan *Plan) time.Duration {
	return CriticalDuration(plan.Graph())
}

// TotalDuration returns the plan's serial upper-bound duration.
func (e *Engine) TotalDuration(plan *Plan) time.Duration {
	return TotalDuration(plan.Graph())
}

// Summarize renders the plan's deterministic summary.
func (e *Engine) Summarize(plan *Plan) string {
	return Summarize(plan.Graph())
}
