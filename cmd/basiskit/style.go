package main

import "github.com/charmbracelet/lipgloss"

// Colors are dropped automatically when stdout is not a terminal.
var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))
	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
)

func statusLine(ok bool, line string) string {
	if ok {
		return okStyle.Render(line)
	}
	return failStyle.Render(line)
}
