package prompt

import "github.com/charmbracelet/lipgloss"

type styles struct {
	frame   lipgloss.Style
	title   lipgloss.Style
	help    lipgloss.Style
	example lipgloss.Style
	errText lipgloss.Style
	hint    lipgloss.Style
}

func newStyles() styles {
	return styles{
		frame:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		example: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		errText: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		hint:    lipgloss.NewStyle().Faint(true),
	}
}
