// Package planrun implements the interactive plan runner. It walks the
// ready frontier of a validated plan: the user performs each step's real
// work out of band, then records the outcome here, and the model recomputes
// what is unblocked next.
package planrun

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/planweave/internal/engine"
	apperrors "github.com/Iron-Ham/planweave/internal/errors"
	"github.com/Iron-Ham/planweave/internal/logging"
)

// keyMap defines the runner's key bindings.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Fail     key.Binding
	Yes      key.Binding
	No       key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "mark complete"),
		),
		Fail: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark failed"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "predicate true"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "predicate false"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Complete, k.Fail, k.Yes, k.No, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Complete, k.Fail},
		{k.Yes, k.No},
		{k.Help, k.Quit},
	}
}

// Model is the bubbletea model for the plan runner.
type Model struct {
	eng  *engine.Engine
	plan *engine.Plan
	log  *logging.Logger

	// predicates holds the user's verdicts for conditional dependencies,
	// keyed "from->to". Unanswered conditions gate their dependent step.
	predicates map[string]bool

	ready    []engine.ReadyStep
	readySet map[string]bool

	cursor  int
	message string
	keys    keyMap
	help    help.Model
	width   int
}

// New creates a runner model for a validated plan.
func New(eng *engine.Engine, plan *engine.Plan, log *logging.Logger) *Model {
	if log == nil {
		log = logging.NopLogger()
	}
	m := &Model{
		eng:        eng,
		plan:       plan,
		log:        log.WithPlan(plan.ID),
		predicates: make(map[string]bool),
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
	m.refresh()
	return m
}

// Run builds the model and runs the bubbletea program to completion.
func Run(eng *engine.Engine, plan *engine.Plan, log *logging.Logger) error {
	p := tea.NewProgram(New(eng, plan, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// refresh recomputes the ready frontier from the plan's completion state
// and the recorded predicate verdicts.
func (m *Model) refresh() {
	q := engine.ReadyQuery{
		Completed:  m.plan.Outcomes(),
		Predicates: m.predicates,
	}
	m.ready = m.plan.ReadySteps(q)
	m.readySet = make(map[string]bool, len(m.ready))
	for _, r := range m.ready {
		m.readySet[r.ID] = true
	}

	if m.cursor >= len(m.plan.Steps) {
		m.cursor = len(m.plan.Steps) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.plan.Steps)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Complete):
			m.recordOutcome(engine.OutcomeSuccess)
		case key.Matches(msg, m.keys.Fail):
			m.recordFailure()
		case key.Matches(msg, m.keys.Yes):
			m.answerPredicate(true)
		case key.Matches(msg, m.keys.No):
			m.answerPredicate(false)
		}
	}

	if m.plan.Status.IsTerminal() {
		m.message = fmt.Sprintf("plan %s — press q to exit", m.plan.Status)
	}
	return m, nil
}

// selected returns the step under the cursor, or nil.
func (m *Model) selected() *engine.Step {
	if m.cursor < 0 || m.cursor >= len(m.plan.Steps) {
		return nil
	}
	return &m.plan.Steps[m.cursor]
}

// recordOutcome marks the selected step terminal with the given outcome.
// Only steps on the ready frontier can be completed.
func (m *Model) recordOutcome(outcome engine.Outcome) {
	step := m.selected()
	if step == nil {
		return
	}
	if !m.readySet[step.ID] {
		m.message = fmt.Sprintf("%s is not ready; complete its dependencies first", step.ID)
		return
	}

	if err := m.eng.MarkComplete(m.plan, step.ID, outcome); err != nil {
		m.message = stateErrorMessage(err)
		return
	}
	m.message = fmt.Sprintf("%s completed", step.ID)
	m.refresh()
}

// recordFailure marks the selected step failed and surfaces its rollback
// actions. Failing does not require readiness: a step the user started out
// of band can fail regardless.
func (m *Model) recordFailure() {
	step := m.selected()
	if step == nil {
		return
	}

	rollback, err := m.eng.MarkFailed(m.plan, step.ID)
	if err != nil {
		m.message = stateErrorMessage(err)
		return
	}
	if len(rollback) > 0 {
		m.message = fmt.Sprintf("%s failed; rollback: %v", step.ID, rollback)
	} else {
		m.message = fmt.Sprintf("%s failed (no rollback actions)", step.ID)
	}
	m.refresh()
}

// answerPredicate records a verdict for the first unanswered conditional
// dependency gating the selected step.
func (m *Model) answerPredicate(verdict bool) {
	step := m.selected()
	if step == nil {
		return
	}

	for _, cond := range m.plan.Graph().Conditions(step.ID) {
		if _, answered := m.predicates[cond.Key]; answered {
			continue
		}
		m.predicates[cond.Key] = verdict
		m.message = fmt.Sprintf("predicate %q on %s recorded as %v", cond.Predicate, cond.Key, verdict)
		m.refresh()
		return
	}
	m.message = fmt.Sprintf("%s has no unanswered conditions", step.ID)
}

// stateErrorMessage renders a state error for the message line.
func stateErrorMessage(err error) string {
	var stateErr *apperrors.StateError
	if apperrors.As(err, &stateErr) {
		return stateErr.Error()
	}
	return err.Error()
}
