package components

import (
	"strings"

	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the current plan in the middle-right, and a transient message if set.
func RenderStatusBar(width int, plan, message string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	planStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	left := base.Render(" [?]help  [s]trategy  [+/-]extra  [q]uit")
	right := ""
	if message != "" {
		right = msgStyle.Render(message) + base.Render("  ")
	}
	if plan != "" {
		right += planStyle.Render(plan) + base.Render(" ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Drop the hints before the plan.
		left = base.Render(" ")
		padding = width - 1 - lipgloss.Width(right)
		if padding < 0 {
			padding = 0
		}
	}

	return left + base.Render(strings.Repeat(" ", padding)) + right
}
