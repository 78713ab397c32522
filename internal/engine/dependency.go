package engine

import "fmt"

// -----------------------------------------------------------------------------
// Dependency Kinds
// -----------------------------------------------------------------------------

// DependencyKind defines the semantics gating when a dependent step becomes
// eligible to run.
type DependencyKind string

const (
	// KindStrict gates the dependent on the predecessor completing with a
	// success outcome.
	KindStrict DependencyKind = "strict"

	// KindWeak gates the dependent on the predecessor reaching any terminal
	// outcome, success or failure. The parser's implicit sequential edges
	// are weak.
	KindWeak DependencyKind = "weak"

	// KindConditional gates the dependent on the predecessor succeeding and
	// on a caller-evaluated predicate over the predecessor's declared
	// outputs. The engine stores the predicate as an opaque token and never
	// evaluates it; verdicts are reported through the readiness query.
	KindConditional DependencyKind = "conditional"

	// KindData gates like strict, and additionally attaches the
	// predecessor's expected outputs to the dependent's input context when
	// the dependent is surfaced as ready.
	KindData DependencyKind = "data"
)

// String returns the string representation of the kind.
func (k DependencyKind) String() string {
	return string(k)
}

// IsValid returns true if this is a recognized dependency kind.
func (k DependencyKind) IsValid() bool {
	switch k {
	case KindStrict, KindWeak, KindConditional, KindData:
		return true
	default:
		return false
	}
}

// Blocking returns true for kinds that gate execution order for estimation
// purposes. Critical-path duration follows only blocking edges.
func (k DependencyKind) Blocking() bool {
	return k == KindStrict || k == KindData
}

// -----------------------------------------------------------------------------
// Dependency
// -----------------------------------------------------------------------------

// Dependency is a directed edge between two steps: ToID depends on FromID.
type Dependency struct {
	// FromID is the predecessor step.
	FromID string `json:"from_id"`

	// ToID is the dependent step.
	ToID string `json:"to_id"`

	// Kind selects the gating semantics for this edge.
	Kind DependencyKind `json:"kind"`

	// Predicate is the opaque caller-evaluated token for conditional edges.
	// Empty for every other kind.
	Predicate string `json:"predicate,omitempty"`
}

// Key returns the canonical "from->to" identifier for this edge. Predicate
// verdicts in a readiness query are keyed by this value.
func (d Dependency) Key() string {
	return DependencyKey(d.FromID, d.ToID)
}

// IsSelfLoop returns true if the edge references the same step on both ends.
func (d Dependency) IsSelfLoop() bool {
	return d.FromID == d.ToID
}

// DependencyKey builds the canonical edge identifier for a from/to pair.
func DependencyKey(fromID, toID string) string {
	return fmt.Sprintf("%s->%s", fromID, toID)
}
