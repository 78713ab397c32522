package engine

import (
	"fmt"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Duration Aggregation
// -----------------------------------------------------------------------------

// CriticalDuration returns the longest-path sum of step duration estimates
// following only blocking (strict and data) edges — the edges that actually
// gate execution order. Weak and conditional edges do not extend the path.
//
// The computation memoizes per-step path lengths and guards against cycles,
// so it is safe to call on an unvalidated graph; steps inside a cycle
// contribute only their own duration.
func CriticalDuration(g *Graph) time.Duration {
	memo := make(map[string]time.Duration, len(g.steps))
	visiting := make(map[string]bool)

	var longest func(id string) time.Duration
	longest = func(id string) time.Duration {
		if d, ok := memo[id]; ok {
			return d
		}
		if visiting[id] {
			return 0
		}
		visiting[id] = true

		var best time.Duration
		for _, ei := range g.incoming[id] {
			edge := g.edges[ei]
			if !edge.Kind.Blocking() {
				continue
			}
			if _, ok := g.index[edge.FromID]; !ok {
				continue
			}
			if d := longest(edge.FromID); d > best {
				best = d
			}
		}

		visiting[id] = false
		total := best + g.Step(id).Duration()
		memo[id] = total
		return total
	}

	var critical time.Duration
	for i := range g.steps {
		if d := longest(g.steps[i].ID); d > critical {
			critical = d
		}
	}
	return critical
}

// TotalDuration returns the sum of every step's duration estimate regardless
// of graph shape — an upper bound on fully serial execution.
func TotalDuration(g *Graph) time.Duration {
	var total time.Duration
	for i := range g.steps {
		total += g.steps[i].Duration()
	}
	return total
}

// -----------------------------------------------------------------------------
// Summaries
// -----------------------------------------------------------------------------

// Summarize renders a deterministic textual listing of the graph's steps
// grouped by type, with per-type counts and the total and critical durations.
// Groups appear in the fixed type priority order and steps within a group in
// parse order, so identical graphs always summarize identically.
func Summarize(g *Graph) string {
	byType := make(map[StepType][]*Step)
	for i := range g.steps {
		byType[g.steps[i].Type] = append(byType[g.steps[i].Type], &g.steps[i])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %d steps, %d dependencies\n", len(g.steps), len(g.edges))

	for _, t := range StepTypePriority {
		steps := byType[t]
		if len(steps) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", t, len(steps))
		for _, s := range steps {
			fmt.Fprintf(&b, "  - [%s] %s (%s)\n", s.ID, s.Name, formatMinutes(s.Duration()))
		}
	}

	fmt.Fprintf(&b, "\nTotal duration:    %s\n", formatMinutes(TotalDuration(g)))
	fmt.Fprintf(&b, "Critical duration: %s\n", formatMinutes(CriticalDuration(g)))
	return b.String()
}

// formatMinutes renders a duration in whole minutes.
func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
