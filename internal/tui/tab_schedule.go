package tui

import (
	"fmt"
	"strings"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/components"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// scheduleColumns are the fixed-width money columns after Month and Date.
var scheduleColumns = []string{"Paid", "Interest", "Total Interest", "Remaining"}

const (
	schedMonthW = 6
	schedDateW  = 9
	schedMoneyW = 14
)

func (a App) renderScheduleTab(cw, h int) string {
	t := theme.Active

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	interestStyle := lipgloss.NewStyle().Foreground(t.Interest).Background(t.Surface)
	paidOffStyle := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface).Bold(true)

	innerW := components.CardInnerWidth(cw)
	fixedW := schedMonthW + schedDateW + len(scheduleColumns)*schedMoneyW
	noteW := max(0, innerW-fixedW-2)

	paidOff := make(map[int][]string)
	for _, p := range a.schedule.Payoffs {
		paidOff[p.Month] = append(paidOff[p.Month], p.Name)
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s%-*s", schedMonthW, "Month", schedDateW, "Date")))
	for _, col := range scheduleColumns {
		b.WriteString(headStyle.Render(fmt.Sprintf("%*s", schedMoneyW, col)))
	}
	if noteW > 0 {
		b.WriteString(headStyle.Render("  " + fmt.Sprintf("%-*s", noteW, "Paid off")))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))

	// card border + title + header + rule
	visible := max(1, h-6)
	months := a.schedule.Months
	end := min(len(months), a.scroll+visible)
	for _, m := range months[a.scroll:end] {
		b.WriteString("\n")
		date := cli.FormatMonth(payoff.DebtFreeDate(a.start, m.MonthIndex))
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*d%-*s", schedMonthW, m.MonthIndex, schedDateW, date)))
		b.WriteString(rowStyle.Render(fmt.Sprintf("%*s", schedMoneyW, cli.FormatMoney(m.TotalPaid))))
		b.WriteString(interestStyle.Render(fmt.Sprintf("%*s", schedMoneyW, cli.FormatMoney(m.InterestThisMonth))))
		b.WriteString(dimStyle.Render(fmt.Sprintf("%*s", schedMoneyW, cli.FormatMoney(m.CumulativeInterest))))
		b.WriteString(rowStyle.Render(fmt.Sprintf("%*s", schedMoneyW, cli.FormatMoney(m.TotalRemaining))))
		if names := paidOff[m.MonthIndex]; noteW > 0 && len(names) > 0 {
			b.WriteString(paidOffStyle.Render("  " + truncStr("✓ "+strings.Join(names, ", "), noteW)))
		}
	}

	title := fmt.Sprintf("Schedule · %s · months %d–%d of %d", a.strategy, a.scroll+1, end, len(months))
	if a.schedule.WontPayoff {
		title += " · won't pay off"
	}
	return components.ContentCard(title, b.String(), cw)
}
