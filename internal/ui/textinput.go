package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLength fits a redirected URL carrying a long code and state.
const maxInputLength = 4096

// TextInputModel implements a bubbletea model for text input
type TextInputModel struct {
	prompt      string
	value       string
	placeholder string
	input       textinput.Model
	validator   func(string) error
	cancelled   bool
	error       string
	done        bool
	styles      styles
}

func newTextInputModel(prompt string, placeholder string, validator func(string) error, s styles) TextInputModel {
	ti := textinput.New()
	ti.Focus()
	ti.Placeholder = placeholder
	ti.CharLimit = maxInputLength
	ti.Width = 80
	ti.PromptStyle = s.cursor
	ti.Cursor.Style = s.cursor

	return TextInputModel{
		prompt:      prompt,
		placeholder: placeholder,
		input:       ti,
		validator:   validator,
		styles:      s,
	}
}

// Init initializes the text input model with cursor blink
func (m TextInputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input events for the text input model
func (m TextInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// the textinput handles the message first so pasting works
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.value = strings.TrimSpace(m.input.Value())

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, cmd
	}

	switch key.String() {
	case "enter":
		if m.validator != nil {
			if err := m.validator(m.value); err != nil {
				m.error = err.Error()
				return m, nil
			}
		}
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	default:
		m.error = ""
	}

	return m, cmd
}

// View renders the text input model
func (m TextInputModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.heading.Render(m.prompt))
	b.WriteString("\n\n")

	if m.done {
		// the value may carry an authorization code
		b.WriteString("> [received]\n\n")
		return b.String()
	}

	b.WriteString(m.input.View() + "\n")

	if m.error != "" {
		b.WriteString("\n" + m.styles.err.Render("Error: "+m.error) + "\n")
		b.WriteString(m.styles.help.Render("Press enter to retry or esc to cancel") + "\n")
	} else {
		b.WriteString("\n" + m.styles.help.Render("Press enter to confirm, esc to cancel") + "\n")
	}

	return b.String()
}
