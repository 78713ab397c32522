package planrun

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/planweave/internal/engine"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	readyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true)
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(4)
	messageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// statusGlyph returns the one-character status marker for a step.
func statusGlyph(status engine.StepStatus) string {
	switch status {
	case engine.StepReady:
		return "●"
	case engine.StepCompleted:
		return "✓"
	case engine.StepFailed:
		return "✗"
	default:
		return "○"
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	header := fmt.Sprintf("planweave run — %d steps, plan %s", len(m.plan.Steps), m.plan.Status)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	for i := range m.plan.Steps {
		step := &m.plan.Steps[i]

		line := fmt.Sprintf("%s [%s] %s (%s, %dm)",
			statusGlyph(step.Status), step.ID, step.Name, step.Type, int(step.Duration().Minutes()))

		style := pendingStyle
		switch {
		case step.Status == engine.StepCompleted:
			style = completedStyle
		case step.Status == engine.StepFailed:
			style = failedStyle
		case m.readySet[step.ID]:
			style = readyStyle
		}
		if i == m.cursor {
			style = cursorStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if i == m.cursor {
			b.WriteString(m.renderDetail(step))
		}
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderDetail renders the expanded detail block for the cursor step:
// incoming dependencies with their kinds, unanswered conditions, and the
// data inputs it would receive if ready.
func (m *Model) renderDetail(step *engine.Step) string {
	var lines []string

	for _, dep := range m.plan.Graph().Dependencies(step.ID) {
		lines = append(lines, fmt.Sprintf("needs %s (%s)", dep.FromID, dep.Kind))
	}

	for _, cond := range m.plan.Graph().Conditions(step.ID) {
		verdict := "unanswered (y/n)"
		if v, ok := m.predicates[cond.Key]; ok {
			verdict = fmt.Sprintf("%v", v)
		}
		lines = append(lines, fmt.Sprintf("condition %q: %s", cond.Predicate, verdict))
	}

	for _, r := range m.ready {
		if r.ID == step.ID && len(r.Inputs) > 0 {
			lines = append(lines, fmt.Sprintf("inputs: %s", strings.Join(r.Inputs, ", ")))
		}
	}

	if len(step.ValidationCriteria) > 0 {
		lines = append(lines, fmt.Sprintf("criteria: %s", strings.Join(step.ValidationCriteria, "; ")))
	}

	if len(lines) == 0 {
		return ""
	}
	return detailStyle.Render(strings.Join(lines, "\n")) + "\n"
}
