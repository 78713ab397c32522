package engine

// -----------------------------------------------------------------------------
// Graph Construction
// -----------------------------------------------------------------------------

// Graph is the flat-arena view of a plan's steps and edges: a slice of steps
// in parse order, an id→index map, and edge slices indexed by endpoint.
// There are no owning references between nodes, so cycle detection is a pure
// array-indexed traversal and the structure cannot form ownership cycles.
//
// A Graph never mutates its inputs and is safe for concurrent readers.
type Graph struct {
	steps    []Step
	index    map[string]int
	edges    []Dependency
	incoming map[string][]int // step ID -> indices into edges where ToID matches
	outgoing map[string][]int // step ID -> indices into edges where FromID matches
}

// BuildGraph assembles a graph from steps and edges. It performs no
// validation; dangling edges are tolerated here and reported by the
// validator.
func BuildGraph(steps []Step, edges []Dependency) *Graph {
	g := &Graph{
		steps:    steps,
		index:    make(map[string]int, len(steps)),
		edges:    edges,
		incoming: make(map[string][]int),
		outgoing: make(map[string][]int),
	}
	for i := range steps {
		g.index[steps[i].ID] = i
	}
	for i := range edges {
		g.incoming[edges[i].ToID] = append(g.incoming[edges[i].ToID], i)
		g.outgoing[edges[i].FromID] = append(g.outgoing[edges[i].FromID], i)
	}
	return g
}

// StepIDs returns every step ID in parse order.
func (g *Graph) StepIDs() []string {
	ids := make([]string, len(g.steps))
	for i := range g.steps {
		ids[i] = g.steps[i].ID
	}
	return ids
}

// Step returns the step with the given ID, or nil.
func (g *Graph) Step(id string) *Step {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.steps[i]
}

// Edges returns the dependency edges of the graph.
func (g *Graph) Edges() []Dependency {
	return g.edges
}

// Dependencies returns the incoming edges of a step, in declaration order.
func (g *Graph) Dependencies(id string) []Dependency {
	idxs := g.incoming[id]
	deps := make([]Dependency, 0, len(idxs))
	for _, i := range idxs {
		deps = append(deps, g.edges[i])
	}
	return deps
}

// -----------------------------------------------------------------------------
// Cycle Detection
// -----------------------------------------------------------------------------

// dfsColor is the three-color mark used by the cycle detector.
type dfsColor uint8

const (
	colorWhite dfsColor = iota // unvisited
	colorGrey                  // on the current DFS stack
	colorBlack                 // fully explored
)

// DetectCycle runs a depth-first traversal over the dependency relation and
// returns the cycle path if one exists, nil otherwise. Encountering a grey
// node closes a cycle; the returned path runs from that node back through the
// DFS stack to itself.
//
// Traversal order follows parse order and edge declaration order, so the
// reported cycle is deterministic for identical input.
func (g *Graph) DetectCycle() []string {
	colors := make(map[string]dfsColor, len(g.steps))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		colors[id] = colorGrey
		stack = append(stack, id)

		for _, ei := range g.incoming[id] {
			from := g.edges[ei].FromID
			if _, ok := g.index[from]; !ok {
				continue // dangling edge, reported by the validator
			}
			switch colors[from] {
			case colorWhite:
				if cycle := visit(from); cycle != nil {
					return cycle
				}
			case colorGrey:
				// The path from the grey node through the stack closes the cycle.
				start := 0
				for i, sid := range stack {
					if sid == from {
						start = i
						break
					}
				}
				cycle := make([]string, 0, len(stack)-start+1)
				cycle = append(cycle, stack[start:]...)
				cycle = append(cycle, from)
				return cycle
			}
		}

		stack = stack[:len(stack)-1]
		colors[id] = colorBlack
		return nil
	}

	for i := range g.steps {
		if colors[g.steps[i].ID] == colorWhite {
			stack = stack[:0]
			if cycle := visit(g.steps[i].ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Readiness Frontier
// -----------------------------------------------------------------------------

// ReadyQuery carries the caller-owned completion state for a frontier
// computation.
type ReadyQuery struct {
	// Completed maps step IDs to their reported terminal outcome.
	Completed map[string]Outcome

	// Predicates maps conditional edge keys (see Dependency.Key) to the
	// caller's evaluation verdict. An edge with no reported verdict keeps
	// its dependent out of the frontier.
	Predicates map[string]bool
}

// Condition is an unevaluated conditional-edge predicate surfaced to the
// caller alongside a ready step. The caller evaluates the token against the
// predecessor's outputs and reports the verdict in the next query.
type Condition struct {
	// FromID is the predecessor whose outputs the predicate ranges over.
	FromID string `json:"from_id"`

	// Key is the edge key to report the verdict under.
	Key string `json:"key"`

	// Predicate is the opaque token.
	Predicate string `json:"predicate"`
}

// ReadyStep is one eligible step in the frontier.
type ReadyStep struct {
	// ID is the eligible step's identifier.
	ID string `json:"id"`

	// Inputs is the input context assembled from the expected outputs of
	// data-edge predecessors, in edge order.
	Inputs []string `json:"inputs,omitempty"`
}

// ReadySteps computes the set of steps eligible to execute given the query,
// ordered by parse order for determinism.
//
// A step is ready iff it has no reported outcome and every incoming edge is
// satisfied: strict and data edges require a success outcome from the
// predecessor, weak edges require any terminal outcome, and conditional
// edges require a success outcome plus a true caller-reported verdict.
// A step with no incoming edges is ready immediately from an empty query;
// this is the base case that makes single-step plans executable.
func (g *Graph) ReadySteps(q ReadyQuery) []ReadyStep {
	var ready []ReadyStep

	for i := range g.steps {
		id := g.steps[i].ID
		if _, done := q.Completed[id]; done {
			continue
		}

		eligible := true
		var inputs []string
		for _, ei := range g.incoming[id] {
			edge := g.edges[ei]
			outcome, terminal := q.Completed[edge.FromID]

			switch edge.Kind {
			case KindWeak:
				if !terminal {
					eligible = false
				}
			case KindConditional:
				if !terminal || !outcome.Succeeded() || !q.Predicates[edge.Key()] {
					eligible = false
				}
			case KindData:
				if !terminal || !outcome.Succeeded() {
					eligible = false
					break
				}
				if from := g.Step(edge.FromID); from != nil {
					inputs = append(inputs, from.ExpectedOutputs...)
				}
			default: // strict
				if !terminal || !outcome.Succeeded() {
					eligible = false
				}
			}
			if !eligible {
				break
			}
		}

		if eligible {
			ready = append(ready, ReadyStep{ID: id, Inputs: inputs})
		}
	}
	return ready
}

// Conditions returns the unevaluated conditional predicates gating a step.
// Surfaced so the caller can evaluate them once the predecessor succeeds.
func (g *Graph) Conditions(id string) []Condition {
	var conds []Condition
	for _, ei := range g.incoming[id] {
		edge := g.edges[ei]
		if edge.Kind == KindConditional {
			conds = append(conds, Condition{
				FromID:    edge.FromID,
				Key:       edge.Key(),
				Predicate: edge.Predicate,
			})
		}
	}
	return conds
}

// -----------------------------------------------------------------------------
// Execution Groups
// -----------------------------------------------------------------------------

// ExecutionGroups performs a topological sort and groups steps that can run
// in parallel. Each inner slice holds step IDs with all dependencies
// satisfied by earlier groups; group 0 runs first. Steps trapped in a cycle
// are omitted, which the validator reports separately.
func (g *Graph) ExecutionGroups() [][]string {
	inDegree := make(map[string]int, len(g.steps))
	for i := range g.steps {
		id := g.steps[i].ID
		for _, ei := range g.incoming[id] {
			if _, ok := g.index[g.edges[ei].FromID]; ok {
				inDegree[id]++
			}
		}
	}

	var groups [][]string
	scheduled := make(map[string]bool, len(g.steps))

	for len(scheduled) < len(g.steps) {
		var current []string
		for i := range g.steps {
			id := g.steps[i].ID
			if !scheduled[id] && inDegree[id] == 0 {
				current = append(current, id)
			}
		}
		if len(current) == 0 {
			// Remaining steps are in a cycle.
			break
		}

		groups = append(groups, current)
		for _, id := range current {
			scheduled[id] = true
			for _, ei := range g.outgoing[id] {
				inDegree[g.edges[ei].ToID]--
			}
		}
	}
	return groups
}
