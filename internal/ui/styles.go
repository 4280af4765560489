package ui

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	styleCursor = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	styleSuggested = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green")).
			Bold(true)

	stylePain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red"))

	styleClosed = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow"))

	styleDetailBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")).
			Bold(true)
)
