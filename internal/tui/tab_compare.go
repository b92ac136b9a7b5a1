package tui

import (
	"fmt"
	"strings"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/components"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCompareTab(cw int) string {
	t := theme.Active
	c := a.comparison
	best := payoff.Recommended(c)

	halves := components.LayoutRow(cw, 2)
	var b strings.Builder
	b.WriteString(components.CardRow([]string{
		a.renderStrategyCard(c.Avalanche, best == model.Avalanche, halves[0]),
		a.renderStrategyCard(c.Snowball, best == model.Snowball, halves[1]),
	}))
	b.WriteString("\n")

	// Verdict line
	verdict := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	loser := c.Snowball
	winner := c.Avalanche
	if best == model.Snowball {
		winner, loser = loser, winner
	}
	var line string
	switch {
	case winner.WontPayoff:
		line = "Neither strategy pays everything off. Add an extra payment."
	case loser.WontPayoff:
		line = fmt.Sprintf("Only %s pays everything off.", best)
	case loser.TotalInterest == winner.TotalInterest && loser.Months == winner.Months:
		line = "Both strategies cost the same here."
	default:
		line = fmt.Sprintf("%s saves %s in interest and finishes %d months sooner.",
			strings.ToUpper(string(best[:1]))+string(best[1:]),
			cli.FormatMoney(loser.TotalInterest-winner.TotalInterest),
			loser.Months-winner.Months)
	}
	b.WriteString(components.ContentCard("Verdict", verdict.Render(line), cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard(
		fmt.Sprintf("What If · %s", a.strategy),
		a.renderWhatIf(components.CardInnerWidth(cw)),
		cw,
	))
	return b.String()
}

func (a App) renderStrategyCard(s model.Summary, recommended bool, outerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	good := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface).Bold(true)

	title := string(s.Strategy)
	if s.Strategy == a.strategy {
		title += " (active)"
	}
	if recommended {
		title += " ★"
	}

	months := payoff.FormatPayoffTime(s.Months)
	date := cli.FormatMonth(payoff.DebtFreeDate(a.start, s.Months))
	if s.WontPayoff {
		months, date = "never", "—"
	}
	first := "—"
	if len(s.Payoffs) > 0 {
		first = fmt.Sprintf("%s (month %d)", s.Payoffs[0].Name, s.Payoffs[0].Month)
	}

	rows := []struct{ k, v string }{
		{"Debt free in", months},
		{"Debt-free date", date},
		{"Total interest", cli.FormatMoney(s.TotalInterest)},
		{"Total paid", cli.FormatMoney(s.TotalPaid)},
		{"First win", first},
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		style := value
		if recommended && i == 2 {
			style = good
		}
		b.WriteString(label.Render(fmt.Sprintf("%-16s", r.k)))
		b.WriteString(style.Render(r.v))
	}
	return components.ContentCard(title, b.String(), outerW)
}

func (a App) renderWhatIf(innerW int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	active := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	good := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const colW = 16
	cols := []string{"Extra/mo", "Payoff time", "Interest", "Months saved", "Interest saved"}
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(head.Render(fmt.Sprintf("%-*s", colW, c)))
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat("─", min(innerW, colW*len(cols)))))

	for _, r := range a.whatIf {
		style := row
		if r.ExtraPayment == a.extra {
			style = active
		}
		when := payoff.FormatPayoffTime(r.Months)
		if r.WontPayoff {
			when = "never"
		}
		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%-*s", colW, cli.FormatMoney(r.ExtraPayment))))
		b.WriteString(style.Render(fmt.Sprintf("%-*s", colW, when)))
		b.WriteString(style.Render(fmt.Sprintf("%-*s", colW, cli.FormatMoney(r.TotalInterest))))
		b.WriteString(good.Render(fmt.Sprintf("%-*d", colW, r.MonthsSaved)))
		b.WriteString(good.Render(fmt.Sprintf("%-*s", colW, cli.FormatMoney(r.InterestSaved))))
	}
	return b.String()
}
