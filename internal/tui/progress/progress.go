// Package progress renders live install progress while the engine runs in
// a background goroutine, fed through the Bridge.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rigup-sh/rigup/internal/tui/components"
)

type stepState int

const (
	stepPending stepState = iota
	stepRunning
	stepDone
	stepFailed
)

type stepStatus struct {
	name  string
	state stepState
	err   error
}

// Model shows pipeline execution progress.
type Model struct {
	styles  components.Styles
	spinner spinner.Model
	bridge  *Bridge

	currentModule string
	moduleIndex   int
	moduleTotal   int
	steps         []stepStatus
	done          bool
	runErr        error
	width         int
	height        int
}

// New creates a progress view over a started Bridge.
func New(styles components.Styles, bridge *Bridge) Model {
	return Model{
		styles:  styles,
		spinner: components.NewSpinner(styles),
		bridge:  bridge,
	}
}

// Init starts the spinner and the pipeline.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.Start())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.bridge.Cancel()
			return m, tea.Quit
		}

	case ModuleStartMsg:
		m.currentModule = msg.ModuleID
		m.moduleIndex = msg.Index
		m.moduleTotal = msg.Total
		m.steps = make([]stepStatus, msg.StepTotal)
		cmds = append(cmds, m.bridge.NextMsg())

	case StepStartMsg:
		if msg.Index < len(m.steps) {
			m.steps[msg.Index] = stepStatus{name: msg.StepName, state: stepRunning}
		}
		cmds = append(cmds, m.bridge.NextMsg())

	case StepDoneMsg:
		if msg.Index < len(m.steps) {
			m.steps[msg.Index].state = stepDone
		}
		cmds = append(cmds, m.bridge.NextMsg())

	case StepErrorMsg:
		if msg.Index < len(m.steps) {
			m.steps[msg.Index].state = stepFailed
			m.steps[msg.Index].err = msg.Err
		}
		cmds = append(cmds, m.bridge.NextMsg())

	case RunDoneMsg:
		m.done = true
		m.runErr = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, tea.Batch(cmds...)
}

// View renders the progress screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(components.RenderBanner(m.styles))
	b.WriteString("\n\n")

	if m.currentModule != "" {
		header := fmt.Sprintf("Module %d/%d: %s", m.moduleIndex+1, m.moduleTotal, m.currentModule)
		b.WriteString(m.styles.Title.Render(header))
		b.WriteString("\n\n")
	}

	for _, s := range m.steps {
		if s.name == "" && s.state == stepPending {
			b.WriteString(m.styles.Muted.Render("  " + m.styles.StatusPending))
			b.WriteString("\n")
			continue
		}

		line := fmt.Sprintf("  %s %s", m.stepIcon(s), s.name)
		switch s.state {
		case stepDone:
			line = m.styles.Success.Render(line)
		case stepFailed:
			line = m.styles.Error.Render(line)
			if s.err != nil {
				line += "\n" + m.styles.Error.Render(fmt.Sprintf("      %v", s.err))
			}
		case stepRunning:
			line = m.styles.Body.Render(line)
		default:
			line = m.styles.Muted.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.runErr != nil {
			b.WriteString(m.styles.Error.Render("  Run aborted."))
		} else {
			b.WriteString(m.styles.Success.Render("  Run finished."))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("  ctrl+c: abort"))
	}

	return b.String()
}

func (m Model) stepIcon(s stepStatus) string {
	switch s.state {
	case stepDone:
		return m.styles.StatusDone
	case stepRunning:
		return m.spinner.View()
	case stepFailed:
		return m.styles.StatusFailed
	default:
		return m.styles.StatusPending
	}
}
