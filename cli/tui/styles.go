package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorTitle     = lipgloss.Color("#FFFFFF")
	colorSubtle    = lipgloss.Color("#666666")
	colorUser      = lipgloss.Color("#7D56F4")
	colorAssistant = lipgloss.Color("#A3BE8C")
	colorError     = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorUser)

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAssistant)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)
)

func joinHelp(parts []string) string {
	return strings.Join(parts, " · ")
}
