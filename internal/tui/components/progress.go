package components

import (
	"fmt"
	"strings"

	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block progress bar followed by its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampFraction(pct)
	filled := min(width, max(0, int(pct*float64(width))))

	barColor := lipgloss.Color(ColorForPaid(pct))
	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForPaid maps repayment progress to a color: little progress is
// red, nearly done is green.
func ColorForPaid(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return string(t.Paid)
	case pct >= 0.5:
		return string(t.Warning)
	case pct >= 0.25:
		return string(t.Owed)
	default:
		return string(t.Danger)
	}
}

// DebtProgressBar renders a labelled repayment bar for one debt with the
// percentage paid and a trailing note such as the payoff month.
func DebtProgressBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active
	pct = clampFraction(pct)

	bar := progress.New(
		progress.WithSolidFill(ColorForPaid(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPaid(pct))).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		noteStyle.Render(note)
}

func clampFraction(pct float64) float64 {
	if pct < 0 || pct != pct {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// truncate shortens s to at most w cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
