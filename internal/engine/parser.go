package engine

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// -----------------------------------------------------------------------------
// Parser Options
// -----------------------------------------------------------------------------

// ParserOptions controls the heuristic policies of the parser.
type ParserOptions struct {
	// SequentialDependencies adds an implicit weak edge from step i-1 to
	// step i when a clause carries no explicit dependency marker. Plans read
	// as ordered procedures by default; disable this to treat unmarked steps
	// as independent.
	SequentialDependencies bool

	// DurationScale multiplies every duration estimate. Must be positive.
	DurationScale float64
}

// DefaultParserOptions returns the default parser policy.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		SequentialDependencies: true,
		DurationScale:          1.0,
	}
}

// Parser segments free text into an ordered sequence of draft steps and
// infers each step's type, preconditions, expected outputs, validation
// criteria, and duration estimate.
//
// Parse is a pure function: deterministic for identical input, never blocks,
// and never fails fatally. Malformed input degrades to a single generic step
// with a warning annotation rather than erroring.
type Parser struct {
	opts ParserOptions
}

// NewParser creates a parser with the given options.
func NewParser(opts ParserOptions) *Parser {
	if opts.DurationScale <= 0 {
		opts.DurationScale = 1.0
	}
	return &Parser{opts: opts}
}

// ParseResult is the output of one parse: draft steps in clause order, the
// inferred dependency edges, and parse-quality annotations.
type ParseResult struct {
	// Steps holds the draft steps in clause order.
	Steps []Step

	// Dependencies holds the inferred edges, explicit and implicit.
	Dependencies []Dependency

	// Degraded is true when segmentation found no structure and fell back
	// to a single catch-all step.
	Degraded bool

	// Warnings carries human-readable parse annotations.
	Warnings []string
}

// -----------------------------------------------------------------------------
// Keyword Tables
// -----------------------------------------------------------------------------

// typeKeywords is the fixed, ordered inference table. Each clause is scored
// independently against every entry; the highest score wins and ties break
// toward the entry declared earlier. The ordering matches StepTypePriority
// and is part of the parser contract.
var typeKeywords = []struct {
	stepType StepType
	words    []string
}{
	{StepFileOperation, []string{"create", "write", "read", "delete", "file", "files", "copy", "move", "directory", "folder"}},
	{StepCommandExecution, []string{"run", "execute", "command", "shell", "script", "invoke", "launch"}},
	{StepCodeGeneration, []string{"implement", "generate", "code", "refactor", "function", "class", "module", "endpoint"}},
	{StepTestExecution, []string{"test", "tests", "verify", "assert", "validate", "check"}},
	{StepSystemConfiguration, []string{"configure", "setup", "install", "provision", "enable", "deploy"}},
	{StepDataAnalysis, []string{"analyze", "compute", "aggregate", "measure", "count", "report"}},
	{StepManualConfirmation, []string{"confirm", "approve", "review", "inspect"}},
}

// typePhrases are multi-word markers checked as substrings rather than
// tokens, scored alongside the keyword table.
var typePhrases = []struct {
	stepType StepType
	phrase   string
}{
	{StepCodeGeneration, "write code"},
	{StepSystemConfiguration, "set up"},
}

// imperativeVerbs marks clauses that read as commands. A clause with no
// keyword match falls back to ToolInvocation when its first word is one of
// these, and CodeGeneration otherwise.
var imperativeVerbs = map[string]bool{
	"do": true, "use": true, "apply": true, "fetch": true, "get": true,
	"make": true, "add": true, "update": true, "remove": true, "send": true,
	"call": true, "open": true, "close": true, "start": true, "stop": true,
	"load": true, "save": true, "extract": true, "merge": true, "sort": true,
	"filter": true, "convert": true, "process": true, "collect": true,
	"prepare": true, "ensure": true,
}

// dependencyMarkers are phrases indicating a clause depends on an earlier
// one, in the order they are searched for.
var dependencyMarkers = []string{
	"using the result of",
	"depends on",
	"after",
	"once",
}

// criteriaMarkers introduce validation criteria inside a clause.
var criteriaMarkers = []string{"verify", "ensure", "should"}

// complexityKeywords inflate the duration estimate when present.
var complexityKeywords = []string{
	"comprehensive", "multiple", "entire", "complex", "complete", "thorough", "all",
}

// codeLanguages are the language names recognized for code generation steps.
var codeLanguages = []string{
	"go", "python", "javascript", "typescript", "rust", "java", "ruby",
	"shell", "sql", "html", "css",
}

// outputMarkers introduce declared outputs inside a clause.
var outputMarkers = []string{"producing", "generating", "outputting", "resulting in"}

var (
	// enumMarkerRe matches explicit enumeration markers: "1.", "2)", and
	// leading bullet glyphs. Numbered markers are honored mid-line so inline
	// procedures ("1. Do this. 2. Do that.") segment correctly.
	enumMarkerRe = regexp.MustCompile(`(?m)(?:^|\s)(?:\d+[.)]|[-*•])\s+`)

	// sentenceRe splits on sentence-boundary punctuation.
	sentenceRe = regexp.MustCompile(`[.!?;]+\s*`)

	wordRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]*`)
)

// -----------------------------------------------------------------------------
// Parse
// -----------------------------------------------------------------------------

// Parse converts an approach description into draft steps and dependency
// edges. Identical input yields identical ids, types, and edges across calls.
func (p *Parser) Parse(text string) ParseResult {
	var result ParseResult

	clauses, degraded := segment(text)
	if degraded {
		result.Degraded = true
		result.Warnings = append(result.Warnings,
			"no step structure detected; produced a single fallback step")
	}

	for i, clause := range clauses {
		step := p.draftStep(i, clause)
		result.Steps = append(result.Steps, step)
	}

	result.Dependencies = p.inferDependencies(clauses, result.Steps)
	return result
}

// draftStep builds one draft step from a clause.
func (p *Parser) draftStep(index int, clause string) Step {
	stepType := inferType(clause)

	step := Step{
		ID:                 StepID(index, clause),
		Name:               stepName(clause),
		Description:        clause,
		Type:               stepType,
		EstimatedDuration:  p.estimateDuration(stepType, clause),
		ExpectedOutputs:    extractOutputs(clause),
		ValidationCriteria: extractCriteria(clause),
		Status:             StepPending,
		Position:           index,
	}
	if stepType == StepCodeGeneration {
		step.Language = inferLanguage(clause)
	}
	return step
}

// -----------------------------------------------------------------------------
// Segmentation
// -----------------------------------------------------------------------------

// segment splits text into clauses. Explicit enumeration markers win, then
// sentence-boundary punctuation, then the whole text as a single degraded
// clause. Returns the clauses and whether the fallback was taken.
func segment(text string) ([]string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{"unstructured step"}, true
	}

	if locs := enumMarkerRe.FindAllStringIndex(trimmed, -1); len(locs) > 0 {
		var clauses []string
		for i, loc := range locs {
			end := len(trimmed)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			if c := cleanClause(trimmed[loc[1]:end]); c != "" {
				clauses = append(clauses, c)
			}
		}
		if len(clauses) > 0 {
			return clauses, false
		}
	}

	var clauses []string
	for _, part := range sentenceRe.Split(trimmed, -1) {
		if c := cleanClause(part); c != "" {
			clauses = append(clauses, c)
		}
	}
	if len(clauses) > 1 {
		return clauses, false
	}

	return []string{cleanClause(trimmed)}, true
}

// cleanClause trims whitespace and trailing sentence punctuation.
func cleanClause(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".!?; \t")
}

// stepName derives a short display name from the clause.
func stepName(clause string) string {
	const maxLen = 48
	if len(clause) <= maxLen {
		return clause
	}
	cut := clause[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

// -----------------------------------------------------------------------------
// Type Inference
// -----------------------------------------------------------------------------

// inferType scores the clause against the fixed keyword table. The highest
// score wins; ties break toward the type declared earlier. A clause with no
// match falls back to ToolInvocation when it opens with an imperative verb,
// and CodeGeneration otherwise.
func inferType(clause string) StepType {
	lower := strings.ToLower(clause)
	tokens := tokenSet(lower)

	best := StepType("")
	bestScore := 0
	for _, entry := range typeKeywords {
		score := 0
		for _, w := range entry.words {
			if tokens[w] {
				score++
			}
		}
		for _, ph := range typePhrases {
			if ph.stepType == entry.stepType && strings.Contains(lower, ph.phrase) {
				score++
			}
		}
		if score > bestScore {
			best = entry.stepType
			bestScore = score
		}
	}
	if bestScore > 0 {
		return best
	}

	words := wordRe.FindAllString(lower, 1)
	if len(words) > 0 && imperativeVerbs[words[0]] {
		return StepToolInvocation
	}
	return StepCodeGeneration
}

// inferLanguage scans the clause for a recognized language name.
func inferLanguage(clause string) string {
	tokens := tokenSet(strings.ToLower(clause))
	for _, lang := range codeLanguages {
		if tokens[lang] {
			return lang
		}
	}
	return ""
}

// tokenSet lowercases and tokenizes a clause into a word-presence set.
func tokenSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordRe.FindAllString(lower, -1) {
		set[w] = true
	}
	return set
}

// -----------------------------------------------------------------------------
// Preconditions, Outputs, and Criteria
// -----------------------------------------------------------------------------

// inferDependencies derives the edge set for the parsed clauses. Explicit
// dependency markers produce a weak edge to the best-matching earlier clause
// and record a precondition on the dependent step. Clauses with no marker
// (or no resolvable reference) get the implicit sequential weak edge from
// their predecessor when that policy is enabled.
func (p *Parser) inferDependencies(clauses []string, steps []Step) []Dependency {
	var deps []Dependency

	for i := range clauses {
		lower := strings.ToLower(clauses[i])

		target := -1
		for _, marker := range dependencyMarkers {
			pos := strings.Index(lower, marker)
			if pos < 0 {
				continue
			}
			fragment := clauses[i][pos:]
			steps[i].Preconditions = append(steps[i].Preconditions, strings.TrimSpace(fragment))
			target = bestReference(lower[pos+len(marker):], clauses[:i])
			break
		}

		switch {
		case target >= 0:
			deps = append(deps, Dependency{
				FromID: steps[target].ID,
				ToID:   steps[i].ID,
				Kind:   KindWeak,
			})
		case i > 0 && p.opts.SequentialDependencies:
			deps = append(deps, Dependency{
				FromID: steps[i-1].ID,
				ToID:   steps[i].ID,
				Kind:   KindWeak,
			})
		}
	}
	return deps
}

// referenceStopwords are excluded from overlap matching.
var referenceStopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"from": true, "into": true, "then": true, "step": true, "have": true,
	"been": true, "will": true, "completing": true, "completed": true,
}

// bestReference finds the earlier clause with the highest keyword overlap
// against the fragment following a dependency marker. Ties break toward the
// nearest earlier clause. Returns -1 when nothing overlaps.
func bestReference(fragment string, earlier []string) int {
	words := significantTokens(fragment)
	if len(words) == 0 {
		return -1
	}

	best, bestScore := -1, 0
	for j := range earlier {
		candidate := tokenSet(strings.ToLower(earlier[j]))
		score := 0
		for w := range words {
			if candidate[w] {
				score++
			}
		}
		if score >= bestScore && score > 0 {
			best, bestScore = j, score
		}
	}
	return best
}

// significantTokens returns the meaningful words of a fragment: longer than
// three characters and not a stopword.
func significantTokens(fragment string) map[string]bool {
	out := make(map[string]bool)
	for w := range tokenSet(strings.ToLower(fragment)) {
		if len(w) > 3 && !referenceStopwords[w] {
			out[w] = true
		}
	}
	return out
}

// extractCriteria pulls validation criteria from the clause: the fragment
// from each criteria marker to the clause end. The validator injects a
// default criterion later when none are found here.
func extractCriteria(clause string) []string {
	lower := strings.ToLower(clause)
	var criteria []string
	for _, marker := range criteriaMarkers {
		if pos := strings.Index(lower, marker); pos >= 0 {
			criteria = append(criteria, strings.TrimSpace(clause[pos:]))
			break
		}
	}
	return criteria
}

// extractOutputs pulls declared outputs from the clause: the fragment after
// an output marker, split on commas.
func extractOutputs(clause string) []string {
	lower := strings.ToLower(clause)
	for _, marker := range outputMarkers {
		pos := strings.Index(lower, marker)
		if pos < 0 {
			continue
		}
		rest := clause[pos+len(marker):]
		var outputs []string
		for _, part := range strings.Split(rest, ",") {
			if part = strings.TrimSpace(strings.TrimLeft(part, " :")); part != "" {
				outputs = append(outputs, part)
			}
		}
		return outputs
	}
	return nil
}

// -----------------------------------------------------------------------------
// Duration Estimation
// -----------------------------------------------------------------------------

// estimateDuration computes base(type) * factor(length, complexity), rounded
// to whole minutes. A heuristic, not a guarantee.
func (p *Parser) estimateDuration(t StepType, clause string) time.Duration {
	factor := 1.0
	switch {
	case len(clause) > 120:
		factor += 0.5
	case len(clause) > 60:
		factor += 0.25
	}

	tokens := tokenSet(strings.ToLower(clause))
	for _, kw := range complexityKeywords {
		if tokens[kw] {
			factor += 0.25
		}
	}

	minutes := math.Round(t.BaseDuration().Minutes() * factor * p.opts.DurationScale)
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

// -----------------------------------------------------------------------------
// Step IDs
// -----------------------------------------------------------------------------

// StepID derives the content-addressed identifier for a clause at a given
// position: a short BLAKE3 hash over the index and the normalized clause
// text. Re-parsing byte-identical input yields identical ids; changing one
// clause's text changes only that clause's id.
func StepID(index int, clause string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(clause)), " ")
	sum := blake3.Sum256([]byte(fmt.Sprintf("%d:%s", index, normalized)))
	return fmt.Sprintf("step-%x", sum[:6])
}
