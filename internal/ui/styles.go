package ui

import "github.com/charmbracelet/lipgloss"

var accent = lipgloss.AdaptiveColor{Light: "63", Dark: "99"}

type styles struct {
	heading     lipgloss.Style
	key         lipgloss.Style
	cursor      lipgloss.Style
	description lipgloss.Style
	help        lipgloss.Style
	err         lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading:     r.NewStyle().Bold(true),
		key:         r.NewStyle().Bold(true).Foreground(accent),
		cursor:      r.NewStyle().Foreground(accent),
		description: r.NewStyle().Faint(true),
		help:        r.NewStyle().Faint(true),
		err:         r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
