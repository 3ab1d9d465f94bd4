package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel implements a bubbletea model for selecting from a list
type SelectModel struct {
	prompt    string
	options   []Option
	selected  int
	cancelled bool
	done      bool
	styles    styles
}

func newSelectModel(prompt string, options []Option, s styles) SelectModel {
	return SelectModel{
		prompt:  prompt,
		options: options,
		styles:  s,
	}
}

// Init initializes the select model
func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles input events for the select model
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k", "shift+tab":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j", "tab":
		if m.selected < len(m.options)-1 {
			m.selected++
		}
	case "home", "g":
		m.selected = 0
	case "end", "G":
		m.selected = len(m.options) - 1
	case "enter":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the select model
func (m SelectModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.heading.Render(m.prompt))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString("> " + m.options[m.selected].Label + "\n\n")
		return b.String()
	}

	for i, opt := range m.options {
		line := "  " + opt.Label
		if i == m.selected {
			line = m.styles.cursor.Render("> " + opt.Label)
		}
		b.WriteString(line)
		if opt.Description != "" {
			b.WriteString("  " + m.styles.description.Render(opt.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.styles.help.Render("Press enter to select, esc to cancel"))
	return b.String()
}
