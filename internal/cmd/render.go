package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/planweave/internal/engine"
	"github.com/charmbracelet/lipgloss"
)

// Styles for terminal output. Rendering falls back to plain text when
// output.color is disabled.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// styled applies a lipgloss style when color is enabled.
func styled(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// renderValidation formats validation findings, one line per message,
// in collection order.
func renderValidation(result *engine.ValidationResult, color bool) string {
	if result == nil || len(result.Messages) == 0 {
		return ""
	}

	var b strings.Builder
	for _, msg := range result.Messages {
		var label string
		switch msg.Severity {
		case engine.SeverityError:
			label = styled(color, errorStyle, "error")
		case engine.SeverityWarning:
			label = styled(color, warningStyle, "warning")
		default:
			label = styled(color, infoStyle, "info")
		}

		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(msg.Message)
		if msg.StepID != "" {
			b.WriteString(" [")
			b.WriteString(styled(color, idStyle, msg.StepID))
			b.WriteString("]")
		}
		b.WriteString("\n")
		if msg.Suggestion != "" {
			fmt.Fprintf(&b, "  suggestion: %s\n", msg.Suggestion)
		}
	}
	return b.String()
}

// renderSummary renders the deterministic plan summary with an optional
// styled header.
func renderSummary(eng *engine.Engine, plan *engine.Plan, color bool) string {
	var b strings.Builder
	header := fmt.Sprintf("plan %s", plan.ID)
	b.WriteString(styled(color, titleStyle, header))
	b.WriteString("\n\n")
	b.WriteString(eng.Summarize(plan))

	if plan.Degraded {
		b.WriteString("\n")
		b.WriteString(styled(color, warningStyle, "note: degraded parse, confidence is low"))
		b.WriteString("\n")
	}
	return b.String()
}
