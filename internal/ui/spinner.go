package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type operationDoneMsg struct{ err error }

// SpinnerModel implements a bubbletea model for showing progress
type SpinnerModel struct {
	spinner     spinner.Model
	message     string
	done        bool
	interrupted bool
	err         error
}

func newSpinnerModel(message string, s styles) SpinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.cursor
	return SpinnerModel{
		spinner: sp,
		message: message,
	}
}

// Init initializes the spinner model with tick animation
func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles input events for the spinner model
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case operationDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View renders the spinner model
func (m SpinnerModel) View() string {
	if m.done {
		// clear the spinner line
		return "\033[2K\r"
	}
	return m.spinner.View() + " " + m.message
}
