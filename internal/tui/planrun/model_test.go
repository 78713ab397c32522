package planrun

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/planweave/internal/engine"
)

func buildTestModel(t *testing.T, steps []engine.Step, deps []engine.Dependency) *Model {
	t.Helper()
	eng := engine.New(engine.DefaultParserOptions(), nil)
	plan, _, err := eng.BuildPlanFromSteps(steps, deps)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return New(eng, plan, nil)
}

func TestModel_InitialFrontier(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "a", Description: "create the schema file"},
		{ID: "b", Description: "load the fixtures"},
	}, []engine.Dependency{
		{FromID: "a", ToID: "b", Kind: engine.KindStrict},
	})

	if !m.readySet["a"] {
		t.Error("root step should start ready")
	}
	if m.readySet["b"] {
		t.Error("dependent step should start gated")
	}
}

func TestModel_CompleteUnblocksDependent(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "a", Description: "create the schema file"},
		{ID: "b", Description: "load the fixtures"},
	}, []engine.Dependency{
		{FromID: "a", ToID: "b", Kind: engine.KindStrict},
	})

	m.cursor = 0
	m.recordOutcome(engine.OutcomeSuccess)

	if m.plan.StepByID("a").Status != engine.StepCompleted {
		t.Errorf("step a status = %s", m.plan.StepByID("a").Status)
	}
	if !m.readySet["b"] {
		t.Error("completing a should unblock b")
	}
}

func TestModel_CompleteRejectedWhenGated(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "a", Description: "create the schema file"},
		{ID: "b", Description: "load the fixtures"},
	}, []engine.Dependency{
		{FromID: "a", ToID: "b", Kind: engine.KindStrict},
	})

	m.cursor = 1
	m.recordOutcome(engine.OutcomeSuccess)

	if m.plan.StepByID("b").Status.IsTerminal() {
		t.Error("gated step must not be completed")
	}
	if !strings.Contains(m.message, "not ready") {
		t.Errorf("message = %q", m.message)
	}
}

func TestModel_FailShowsRollback(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "a", Description: "migrate the database", RollbackActions: []string{"restore the backup"}},
	}, nil)

	m.cursor = 0
	m.recordFailure()

	if m.plan.StepByID("a").Status != engine.StepFailed {
		t.Errorf("step status = %s", m.plan.StepByID("a").Status)
	}
	if !strings.Contains(m.message, "restore the backup") {
		t.Errorf("message = %q, want the rollback action", m.message)
	}
}

func TestModel_AnswerPredicate(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "fetch", Description: "fetch the dataset"},
		{ID: "load", Description: "load the dataset"},
	}, []engine.Dependency{
		{FromID: "fetch", ToID: "load", Kind: engine.KindConditional, Predicate: "rows > 0"},
	})

	m.cursor = 0
	m.recordOutcome(engine.OutcomeSuccess)

	if m.readySet["load"] {
		t.Fatal("dependent should stay gated until the predicate is answered")
	}

	m.cursor = 1
	m.answerPredicate(true)

	if !m.readySet["load"] {
		t.Error("a true verdict should unblock the dependent")
	}

	// All conditions answered; further verdicts are refused.
	m.answerPredicate(false)
	if !strings.Contains(m.message, "no unanswered conditions") {
		t.Errorf("message = %q", m.message)
	}
}

func TestModel_ViewListsSteps(t *testing.T) {
	m := buildTestModel(t, []engine.Step{
		{ID: "a", Description: "create the schema file"},
	}, nil)

	view := m.View()
	if !strings.Contains(view, "[a]") {
		t.Errorf("view missing the step:\n%s", view)
	}
	if !strings.Contains(view, "planweave run") {
		t.Errorf("view missing the header:\n%s", view)
	}
}
