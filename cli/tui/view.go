package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nox-hq/gptcore/assist"
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" gptcore") + subtleStyle.Render(" · "+m.model))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(" " + keys.help()))
	return b.String()
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(" error: " + m.err.Error())
	case m.waiting:
		return subtleStyle.Render(" waiting for reply...")
	case m.haveUsage:
		return subtleStyle.Render(" " + m.usage.String())
	default:
		return subtleStyle.Render(" Enter a prompt. An empty prompt ends the session.")
	}
}

func renderEntries(entries []entry, width int) string {
	if len(entries) == 0 {
		return ""
	}

	body := lipgloss.NewStyle().Width(max(width-2, 10)).PaddingLeft(2)

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		label := userLabelStyle.Render("You")
		if e.role == assist.RoleAssistant {
			label = assistantLabelStyle.Render("Assistant")
		}
		fmt.Fprintf(&b, "%s\n%s\n", label, body.Render(e.text))
	}
	return b.String()
}
