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

// orderedDebts returns the debts in the active strategy's priority order.
func (a App) orderedDebts() []model.Debt {
	ids := a.schedule.Order
	if len(ids) == 0 {
		ids = payoff.Order(a.debts, a.strategy)
	}
	out := make([]model.Debt, 0, len(a.debts))
	for _, id := range ids {
		if d, ok := a.debtByID(id); ok {
			out = append(out, d)
		}
	}
	return out
}

func (a App) renderDebtsTab(cw int) string {
	t := theme.Active
	debts := a.orderedDebts()

	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	const rateW, moneyW = 10, 14
	nameW := max(12, innerW-rateW-3*moneyW-4)

	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("  %-*s%*s%*s%*s%*s", nameW, "Debt", rateW, "Rate", moneyW, "Minimum", moneyW, "Balance", moneyW, "Interest/mo")))
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat("─", innerW)))

	var totalMin, totalBal, totalInt float64
	for i, d := range debts {
		style := row
		marker := "  "
		if i == a.cursor {
			style = sel
			marker = "▸ "
		}
		interest := firstMonthInterest(d)
		totalMin += d.MinimumPayment
		totalBal += d.Balance
		totalInt += interest

		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%s%-*s%*s%*s%*s%*s",
			marker,
			nameW, truncStr(d.Label(), nameW),
			rateW, cli.FormatRate(d.InterestRate),
			moneyW, cli.FormatMoney(d.MinimumPayment),
			moneyW, cli.FormatMoney(d.Balance),
			moneyW, cli.FormatMoney(interest))))
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")
	b.WriteString(head.Render(fmt.Sprintf("  %-*s%*s%*s%*s%*s",
		nameW, fmt.Sprintf("%d debts", len(debts)),
		rateW, "",
		moneyW, cli.FormatMoney(totalMin),
		moneyW, cli.FormatMoney(totalBal),
		moneyW, cli.FormatMoney(totalInt))))

	title := fmt.Sprintf("Debts · %s order", a.strategy)
	out := components.ContentCard(title, b.String(), cw)

	if a.cursor < len(debts) {
		out += "\n" + a.renderDebtDetail(debts[a.cursor], cw)
	}
	return out
}

func (a App) renderDebtDetail(d model.Debt, cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	payoffMonth := 0
	for _, p := range a.schedule.Payoffs {
		if p.ID == d.ID {
			payoffMonth = p.Month
			break
		}
	}
	when := "not within this plan"
	if payoffMonth > 0 {
		when = fmt.Sprintf("%s (%s)", cli.FormatMonth(payoff.DebtFreeDate(a.start, payoffMonth)), payoff.FormatPayoffTime(payoffMonth))
	}

	var paid float64
	for _, m := range a.schedule.Months {
		paid += m.Payments[d.ID]
	}

	fields := []struct{ k, v string }{
		{"ID", d.ID},
		{"Institution", orDash(d.Institution)},
		{"Type", orDash(d.Type)},
		{"Paid off", when},
		{"Will pay", cli.FormatMoney(paid)},
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(label.Render(fmt.Sprintf("%-14s", f.k)))
		b.WriteString(value.Render(f.v))
		b.WriteString("\n")
	}
	innerW := components.CardInnerWidth(cw)
	b.WriteString(components.ProgressBar(d.PaidOffFraction(), max(10, innerW-6)))

	return components.ContentCard(d.Label(), b.String(), cw)
}

// firstMonthInterest is the interest the debt accrues next month at its
// current balance.
func firstMonthInterest(d model.Debt) float64 {
	if d.Balance <= 0 || d.InterestRate <= 0 {
		return 0
	}
	return d.Balance * d.InterestRate / 1200
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
