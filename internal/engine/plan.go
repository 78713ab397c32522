package engine

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Iron-Ham/planweave/internal/errors"
)

// -----------------------------------------------------------------------------
// Plan Status
// -----------------------------------------------------------------------------

// PlanStatus represents the lifecycle state of a plan.
//
// A plan is created Pending by the parser and graph builder, frozen to
// Validated by the validator, moves to InProgress on the first outcome
// report, and ends Completed or Failed once every step is terminal.
type PlanStatus string

const (
	// PlanPending indicates the plan has not been validated yet.
	PlanPending PlanStatus = "pending"

	// PlanValidated indicates the plan passed structural validation.
	PlanValidated PlanStatus = "validated"

	// PlanInProgress indicates at least one step outcome was reported.
	PlanInProgress PlanStatus = "in_progress"

	// PlanCompleted indicates every step completed successfully.
	PlanCompleted PlanStatus = "completed"

	// PlanFailed indicates every step is terminal and at least one failed.
	PlanFailed PlanStatus = "failed"
)

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanCompleted || s == PlanFailed
}

// -----------------------------------------------------------------------------
// Plan
// -----------------------------------------------------------------------------

// Plan is the validated aggregate of steps and dependencies produced from one
// approach text.
//
// A plan is mutated only through MarkComplete and MarkFailed, one call per
// step, each step at most once. The plan is not internally synchronized:
// the engine assumes a single writer of the completion state with any number
// of concurrent readers of the immutable graph. Abandoning a plan requires
// no teardown since no background resources are held.
type Plan struct {
	// ID uniquely identifies this plan. Generated at build time; unlike step
	// IDs it is not content-addressed, so two builds of the same text are
	// distinguishable.
	ID string `json:"id"`

	// Approach is the original free-text input the plan was parsed from.
	// Empty for plans built from caller-supplied step lists.
	Approach string `json:"approach,omitempty"`

	// Steps holds every step in parse order.
	Steps []Step `json:"steps"`

	// Dependencies holds every edge between steps.
	Dependencies []Dependency `json:"dependencies"`

	// Status is the current lifecycle state of the plan.
	Status PlanStatus `json:"status"`

	// Degraded is true when segmentation found no structure and the parser
	// fell back to a single catch-all step. A degraded plan still validates;
	// the flag is a warning-level annotation, not an error.
	Degraded bool `json:"degraded,omitempty"`

	// Warnings carries parser annotations such as the degraded-parse notice.
	Warnings []string `json:"warnings,omitempty"`

	// CreatedAt is the timestamp when this plan was built.
	CreatedAt time.Time `json:"created_at"`

	graph *Graph
}

// NewPlan assembles a plan from parsed steps and edges. The plan starts
// Pending; it must pass Validate before its mutation API becomes usable.
func NewPlan(approach string, steps []Step, deps []Dependency) *Plan {
	for i := range steps {
		if steps[i].Status == "" {
			steps[i].Status = StepPending
		}
	}
	return &Plan{
		ID:           uuid.NewString(),
		Approach:     approach,
		Steps:        steps,
		Dependencies: deps,
		Status:       PlanPending,
		CreatedAt:    time.Now(),
	}
}

// StepCount returns the total number of steps in the plan.
func (p *Plan) StepCount() int {
	return len(p.Steps)
}

// StepByID returns a pointer to the step with the given ID, or nil.
func (p *Plan) StepByID(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// Graph returns the dependency graph for this plan, building it on first use.
// The graph indexes the plan's own step slice; mutating steps through the
// plan's API keeps the two views consistent.
func (p *Plan) Graph() *Graph {
	if p.graph == nil {
		p.graph = BuildGraph(p.Steps, p.Dependencies)
	}
	return p.graph
}

// invalidateGraph drops the cached graph after structural mutation.
func (p *Plan) invalidateGraph() {
	p.graph = nil
}

// Outcomes returns the completion state derived from step statuses. The
// returned map is a snapshot suitable for passing to ReadySteps.
func (p *Plan) Outcomes() map[string]Outcome {
	out := make(map[string]Outcome)
	for i := range p.Steps {
		switch p.Steps[i].Status {
		case StepCompleted:
			out[p.Steps[i].ID] = OutcomeSuccess
		case StepFailed:
			out[p.Steps[i].ID] = OutcomeFailure
		}
	}
	return out
}

// ReadySteps computes the ready frontier for the given query, ordered by
// parse order. It also refreshes the Ready status annotation on non-terminal
// steps so displays stay truthful.
func (p *Plan) ReadySteps(q ReadyQuery) []ReadyStep {
	ready := p.Graph().ReadySteps(q)

	inFrontier := make(map[string]bool, len(ready))
	for _, r := range ready {
		inFrontier[r.ID] = true
	}
	for i := range p.Steps {
		if p.Steps[i].Status.IsTerminal() {
			continue
		}
		if inFrontier[p.Steps[i].ID] {
			p.Steps[i].Status = StepReady
		} else {
			p.Steps[i].Status = StepPending
		}
	}
	return ready
}

// MarkComplete records a terminal outcome for a step. A success outcome
// moves the step to Completed; a failure outcome moves it to Failed without
// surfacing rollback actions (use MarkFailed for that).
//
// Returns a StateError if the step is unknown or already terminal.
func (p *Plan) MarkComplete(id string, outcome Outcome) error {
	step, err := p.mutableStep(id)
	if err != nil {
		return err
	}

	if outcome.Succeeded() {
		step.Status = StepCompleted
	} else {
		step.Status = StepFailed
	}
	p.refreshStatus()
	return nil
}

// MarkFailed records a failure for a step and returns its rollback actions
// so the caller can compensate for work the step already performed.
//
// Returns a StateError if the step is unknown or already terminal.
func (p *Plan) MarkFailed(id string) ([]string, error) {
	step, err := p.mutableStep(id)
	if err != nil {
		return nil, err
	}

	step.Status = StepFailed
	p.refreshStatus()
	return step.RollbackActions, nil
}

// mutableStep resolves a step for mutation, enforcing the plan and step
// state machines.
func (p *Plan) mutableStep(id string) (*Step, error) {
	if p.Status == PlanPending {
		return nil, apperrors.ErrPlanNotValidated
	}
	if p.Status.IsTerminal() {
		return nil, apperrors.ErrPlanTerminal
	}

	step := p.StepByID(id)
	if step == nil {
		return nil, apperrors.NewStateError(apperrors.KindUnknownStepID, id, "")
	}
	if step.Status.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.KindAlreadyTerminal, id, step.Status.String())
	}
	return step, nil
}

// refreshStatus recomputes the plan status after a step mutation.
func (p *Plan) refreshStatus() {
	terminal := 0
	failed := 0
	for i := range p.Steps {
		if p.Steps[i].Status.IsTerminal() {
			terminal++
		}
		if p.Steps[i].Status == StepFailed {
			failed++
		}
	}

	switch {
	case terminal == len(p.Steps) && failed == 0:
		p.Status = PlanCompleted
	case terminal == len(p.Steps):
		p.Status = PlanFailed
	case terminal > 0:
		p.Status = PlanInProgress
	}
}
