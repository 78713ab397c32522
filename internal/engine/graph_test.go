package engine

import (
	"testing"
)

// testSteps builds minimal steps with explicit ids for graph tests.
func testSteps(ids ...string) []Step {
	steps := make([]Step, len(ids))
	for i, id := range ids {
		steps[i] = Step{ID: id, Name: id, Status: StepPending, Position: i}
	}
	return steps
}

func TestBuildGraph_Indexing(t *testing.T) {
	steps := testSteps("a", "b")
	edges := []Dependency{{FromID: "a", ToID: "b", Kind: KindStrict}}
	g := BuildGraph(steps, edges)

	if g.Step("a") == nil || g.Step("b") == nil {
		t.Fatal("steps not indexed")
	}
	if g.Step("ghost") != nil {
		t.Error("unknown id should return nil")
	}
	if deps := g.Dependencies("b"); len(deps) != 1 || deps[0].FromID != "a" {
		t.Errorf("incoming edges of b = %v", deps)
	}
}

func TestDetectCycle_None(t *testing.T) {
	g := BuildGraph(testSteps("a", "b", "c"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindStrict},
		{FromID: "b", ToID: "c", Kind: KindStrict},
	})
	if cycle := g.DetectCycle(); cycle != nil {
		t.Fatalf("unexpected cycle: %v", cycle)
	}
}

func TestDetectCycle_ReportsPath(t *testing.T) {
	g := BuildGraph(testSteps("a", "b", "c"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindStrict},
		{FromID: "b", ToID: "c", Kind: KindStrict},
		{FromID: "c", ToID: "a", Kind: KindStrict},
	})

	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected a cycle")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle path %v does not close on itself", cycle)
	}
	if len(cycle) != 4 {
		t.Errorf("cycle path %v, want 3 distinct steps plus the closing repeat", cycle)
	}
}

func TestDetectCycle_ToleratesDanglingEdges(t *testing.T) {
	g := BuildGraph(testSteps("a"), []Dependency{
		{FromID: "ghost", ToID: "a", Kind: KindStrict},
	})
	if cycle := g.DetectCycle(); cycle != nil {
		t.Fatalf("unexpected cycle: %v", cycle)
	}
}

func TestReadySteps_EmptyQueryRootsOnly(t *testing.T) {
	g := BuildGraph(testSteps("a", "b", "c"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindStrict},
		{FromID: "b", ToID: "c", Kind: KindWeak},
	})

	ready := g.ReadySteps(ReadyQuery{})
	if len(ready) != 1 || ready[0].ID != "a" {
		t.Fatalf("ready = %v, want [a]", ready)
	}
}

func TestReadySteps_StrictRequiresSuccess(t *testing.T) {
	g := BuildGraph(testSteps("a", "b"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindStrict},
	})

	ready := g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeFailure}})
	if len(ready) != 0 {
		t.Fatalf("ready after failure = %v, want none", ready)
	}

	ready = g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeSuccess}})
	if len(ready) != 1 || ready[0].ID != "b" {
		t.Fatalf("ready after success = %v, want [b]", ready)
	}
}

func TestReadySteps_WeakAcceptsAnyTerminalOutcome(t *testing.T) {
	g := BuildGraph(testSteps("a", "b"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindWeak},
	})

	ready := g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeFailure}})
	if len(ready) != 1 || ready[0].ID != "b" {
		t.Fatalf("ready after weak predecessor failure = %v, want [b]", ready)
	}
}

func TestReadySteps_ConditionalNeedsVerdict(t *testing.T) {
	g := BuildGraph(testSteps("a", "b"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindConditional, Predicate: "rows > 0"},
	})
	done := map[string]Outcome{"a": OutcomeSuccess}

	if ready := g.ReadySteps(ReadyQuery{Completed: done}); len(ready) != 0 {
		t.Fatalf("unanswered predicate: ready = %v, want none", ready)
	}

	falseVerdict := map[string]bool{DependencyKey("a", "b"): false}
	if ready := g.ReadySteps(ReadyQuery{Completed: done, Predicates: falseVerdict}); len(ready) != 0 {
		t.Fatalf("false predicate: ready = %v, want none", ready)
	}

	trueVerdict := map[string]bool{DependencyKey("a", "b"): true}
	ready := g.ReadySteps(ReadyQuery{Completed: done, Predicates: trueVerdict})
	if len(ready) != 1 || ready[0].ID != "b" {
		t.Fatalf("true predicate: ready = %v, want [b]", ready)
	}
}

func TestReadySteps_DataAttachesInputs(t *testing.T) {
	steps := testSteps("a", "b")
	steps[0].ExpectedOutputs = []string{"dataset", "row count"}
	g := BuildGraph(steps, []Dependency{
		{FromID: "a", ToID: "b", Kind: KindData},
	})

	ready := g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeSuccess}})
	if len(ready) != 1 || ready[0].ID != "b" {
		t.Fatalf("ready = %v, want [b]", ready)
	}
	if len(ready[0].Inputs) != 2 || ready[0].Inputs[0] != "dataset" {
		t.Errorf("inputs = %v, want predecessor outputs", ready[0].Inputs)
	}

	// Data edges gate like strict: failure blocks.
	if ready := g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeFailure}}); len(ready) != 0 {
		t.Errorf("ready after data predecessor failure = %v, want none", ready)
	}
}

func TestReadySteps_TerminalStepsExcluded(t *testing.T) {
	g := BuildGraph(testSteps("a"), nil)
	ready := g.ReadySteps(ReadyQuery{Completed: map[string]Outcome{"a": OutcomeSuccess}})
	if len(ready) != 0 {
		t.Fatalf("completed step surfaced as ready: %v", ready)
	}
}

func TestReadySteps_OrderedByParseOrder(t *testing.T) {
	g := BuildGraph(testSteps("c", "a", "b"), nil)
	ready := g.ReadySteps(ReadyQuery{})
	if len(ready) != 3 {
		t.Fatalf("ready = %v", ready)
	}
	for i, want := range []string{"c", "a", "b"} {
		if ready[i].ID != want {
			t.Errorf("ready[%d] = %s, want %s", i, ready[i].ID, want)
		}
	}
}

func TestConditions(t *testing.T) {
	g := BuildGraph(testSteps("a", "b"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindConditional, Predicate: "exit == 0"},
	})

	conds := g.Conditions("b")
	if len(conds) != 1 {
		t.Fatalf("conditions = %v", conds)
	}
	if conds[0].FromID != "a" || conds[0].Predicate != "exit == 0" {
		t.Errorf("condition = %+v", conds[0])
	}
	if conds[0].Key != DependencyKey("a", "b") {
		t.Errorf("condition key = %s", conds[0].Key)
	}

	if conds := g.Conditions("a"); len(conds) != 0 {
		t.Errorf("expected no conditions for a, got %v", conds)
	}
}

func TestExecutionGroups(t *testing.T) {
	g := BuildGraph(testSteps("a", "b", "c", "d"), []Dependency{
		{FromID: "a", ToID: "b", Kind: KindStrict},
		{FromID: "a", ToID: "c", Kind: KindStrict},
		{FromID: "b", ToID: "d", Kind: KindStrict},
		{FromID: "c", ToID: "d", Kind: KindStrict},
	})

	groups := g.ExecutionGroups()
	if len(groups) != 3 {
		t.Fatalf("groups = %v, want 3 levels", groups)
	}
	if len(groups[0]) != 1 || groups[0][0] != "a" {
		t.Errorf("group 0 = %v", groups[0])
	}
	if len(groups[1]) != 2 {
		t.Errorf("group 1 = %v", groups[1])
	}
	if len(groups[2]) != 1 || groups[2][0] != "d" {
		t.Errorf("group 2 = %v", groups[2])
	}
}

func TestExecutionGroups_OmitsCycleMembers(t *testing.T) {
	g := BuildGraph(testSteps("a", "b", "c"), []Dependency{
		{FromID: "b", ToID: "c", Kind: KindStrict},
		{FromID: "c", ToID: "b", Kind: KindStrict},
	})

	groups := g.ExecutionGroups()
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0] != "a" {
		t.Fatalf("groups = %v, want only the acyclic step", groups)
	}
}
