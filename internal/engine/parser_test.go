package engine

import (
	"strings"
	"testing"
)

func TestSegment_EnumeratedInline(t *testing.T) {
	clauses, degraded := segment("1. Create config file. 2. Read config file and validate contents.")
	if degraded {
		t.Fatal("expected structured parse, got degraded")
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d: %v", len(clauses), clauses)
	}
	if clauses[0] != "Create config file" {
		t.Errorf("clause 0 = %q", clauses[0])
	}
	if clauses[1] != "Read config file and validate contents" {
		t.Errorf("clause 1 = %q", clauses[1])
	}
}

func TestSegment_BulletedList(t *testing.T) {
	text := "- write the parser\n- test the parser\n- deploy the service"
	clauses, degraded := segment(text)
	if degraded {
		t.Fatal("expected structured parse, got degraded")
	}
	if len(clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d: %v", len(clauses), clauses)
	}
}

func TestSegment_SentencePunctuation(t *testing.T) {
	clauses, degraded := segment("Build the parser. Then run the tests!")
	if degraded {
		t.Fatal("expected structured parse, got degraded")
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d: %v", len(clauses), clauses)
	}
}

func TestSegment_DegradedSingleClause(t *testing.T) {
	clauses, degraded := segment("do something")
	if !degraded {
		t.Fatal("expected degraded parse")
	}
	if len(clauses) != 1 || clauses[0] != "do something" {
		t.Fatalf("unexpected clauses: %v", clauses)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	clauses, degraded := segment("   ")
	if !degraded {
		t.Fatal("expected degraded parse for empty input")
	}
	if len(clauses) != 1 {
		t.Fatalf("expected 1 fallback clause, got %d", len(clauses))
	}
}

func TestInferType_KeywordScoring(t *testing.T) {
	tests := []struct {
		clause string
		want   StepType
	}{
		{"create the output file", StepFileOperation},
		{"run the migration script", StepCommandExecution},
		{"implement the parsing function", StepCodeGeneration},
		{"verify and check the results", StepTestExecution},
		{"install and configure the daemon", StepSystemConfiguration},
		{"analyze and aggregate the metrics", StepDataAnalysis},
		{"review and approve the changes", StepManualConfirmation},
		{"set up the staging environment", StepSystemConfiguration},
		{"write code for the scheduler", StepCodeGeneration},
	}
	for _, tt := range tests {
		if got := inferType(tt.clause); got != tt.want {
			t.Errorf("inferType(%q) = %s, want %s", tt.clause, got, tt.want)
		}
	}
}

func TestInferType_TieBreaksTowardEarlierType(t *testing.T) {
	// "create" scores for file_operation, "tests" for test_execution;
	// the earlier type in the priority order wins the tie.
	if got := inferType("create tests"); got != StepFileOperation {
		t.Errorf("inferType tie = %s, want %s", got, StepFileOperation)
	}
}

func TestInferType_ImperativeFallback(t *testing.T) {
	if got := inferType("do something"); got != StepToolInvocation {
		t.Errorf("imperative fallback = %s, want %s", got, StepToolInvocation)
	}
	if got := inferType("the weather is nice"); got != StepCodeGeneration {
		t.Errorf("non-imperative fallback = %s, want %s", got, StepCodeGeneration)
	}
}

func TestInferLanguage(t *testing.T) {
	if got := inferLanguage("implement the handler in go"); got != "go" {
		t.Errorf("inferLanguage = %q, want go", got)
	}
	if got := inferLanguage("implement the handler"); got != "" {
		t.Errorf("inferLanguage = %q, want empty", got)
	}
}

func TestParse_ExplicitDependencyMarker(t *testing.T) {
	p := NewParser(DefaultParserOptions())
	result := p.Parse("1. Build the parser module. 2. Run the integration suite after the parser module is built.")

	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(result.Steps))
	}
	if len(result.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(result.Dependencies))
	}

	dep := result.Dependencies[0]
	if dep.FromID != result.Steps[0].ID || dep.ToID != result.Steps[1].ID {
		t.Errorf("dependency %s does not link step 2 to step 1", dep.Key())
	}
	if dep.Kind != KindWeak {
		t.Errorf("dependency kind = %s, want weak", dep.Kind)
	}

	if len(result.Steps[1].Preconditions) != 1 {
		t.Fatalf("expected 1 precondition, got %v", result.Steps[1].Preconditions)
	}
	if !strings.HasPrefix(result.Steps[1].Preconditions[0], "after") {
		t.Errorf("precondition = %q, want the marker fragment", result.Steps[1].Preconditions[0])
	}
}

func TestParse_SequentialDependencyPolicy(t *testing.T) {
	text := "1. Create the schema. 2. Load the fixtures."

	p := NewParser(DefaultParserOptions())
	result := p.Parse(text)
	if len(result.Dependencies) != 1 {
		t.Fatalf("sequential on: expected 1 dependency, got %d", len(result.Dependencies))
	}
	if result.Dependencies[0].Kind != KindWeak {
		t.Errorf("implicit edge kind = %s, want weak", result.Dependencies[0].Kind)
	}

	p = NewParser(ParserOptions{SequentialDependencies: false, DurationScale: 1.0})
	result = p.Parse(text)
	if len(result.Dependencies) != 0 {
		t.Fatalf("sequential off: expected 0 dependencies, got %d", len(result.Dependencies))
	}
}

func TestParse_Degraded(t *testing.T) {
	p := NewParser(DefaultParserOptions())
	result := p.Parse("do something")

	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a degraded-parse warning")
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected 1 fallback step, got %d", len(result.Steps))
	}
	if result.Steps[0].Type != StepToolInvocation {
		t.Errorf("fallback type = %s, want %s", result.Steps[0].Type, StepToolInvocation)
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := NewParser(DefaultParserOptions())
	text := "1. Implement the cache. 2. Test the cache after the cache is implemented."

	first := p.Parse(text)
	second := p.Parse(text)

	if len(first.Steps) != len(second.Steps) {
		t.Fatalf("step counts differ: %d vs %d", len(first.Steps), len(second.Steps))
	}
	for i := range first.Steps {
		if first.Steps[i].ID != second.Steps[i].ID {
			t.Errorf("step %d id differs: %s vs %s", i, first.Steps[i].ID, second.Steps[i].ID)
		}
		if first.Steps[i].Type != second.Steps[i].Type {
			t.Errorf("step %d type differs", i)
		}
	}
	for i := range first.Dependencies {
		if first.Dependencies[i] != second.Dependencies[i] {
			t.Errorf("dependency %d differs", i)
		}
	}
}

func TestExtractCriteria(t *testing.T) {
	criteria := extractCriteria("Run the suite and verify all checks pass")
	if len(criteria) != 1 {
		t.Fatalf("expected 1 criterion, got %v", criteria)
	}
	if !strings.HasPrefix(criteria[0], "verify") {
		t.Errorf("criterion = %q", criteria[0])
	}

	if got := extractCriteria("Run the suite"); got != nil {
		t.Errorf("expected no criteria, got %v", got)
	}
}

func TestExtractOutputs(t *testing.T) {
	outputs := extractOutputs("Analyze the logs producing a report, summary stats")
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %v", outputs)
	}
	if outputs[0] != "a report" || outputs[1] != "summary stats" {
		t.Errorf("outputs = %v", outputs)
	}

	if got := extractOutputs("Analyze the logs"); got != nil {
		t.Errorf("expected no outputs, got %v", got)
	}
}

func TestEstimateDuration(t *testing.T) {
	p := NewParser(DefaultParserOptions())

	// Base duration, no multipliers.
	if got := p.estimateDuration(StepCodeGeneration, "implement parser"); got.Minutes() != 20 {
		t.Errorf("base = %v, want 20m", got)
	}

	// Length over 60 characters adds 0.25.
	long := "implement " + strings.Repeat("x", 70)
	if got := p.estimateDuration(StepCodeGeneration, long); got.Minutes() != 25 {
		t.Errorf("long clause = %v, want 25m", got)
	}

	// Complexity keyword adds 0.25.
	if got := p.estimateDuration(StepCodeGeneration, "implement comprehensive parser"); got.Minutes() != 25 {
		t.Errorf("complexity = %v, want 25m", got)
	}

	// DurationScale multiplies the whole estimate.
	scaled := NewParser(ParserOptions{SequentialDependencies: true, DurationScale: 2.0})
	if got := scaled.estimateDuration(StepCodeGeneration, "implement parser"); got.Minutes() != 40 {
		t.Errorf("scaled = %v, want 40m", got)
	}

	// Estimates never drop below one minute.
	tiny := NewParser(ParserOptions{SequentialDependencies: true, DurationScale: 0.01})
	if got := tiny.estimateDuration(StepCommandExecution, "run it"); got.Minutes() != 1 {
		t.Errorf("floor = %v, want 1m", got)
	}
}

func TestStepID_Stability(t *testing.T) {
	// Whitespace and case normalize away.
	a := StepID(0, "Create the File")
	b := StepID(0, "  create   THE file ")
	if a != b {
		t.Errorf("normalized ids differ: %s vs %s", a, b)
	}

	// Position participates in the hash.
	if StepID(0, "create the file") == StepID(1, "create the file") {
		t.Error("ids at different positions should differ")
	}

	if !strings.HasPrefix(a, "step-") {
		t.Errorf("id %q missing prefix", a)
	}
}
