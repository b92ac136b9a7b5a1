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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	sum := a.summary
	sv := a.savings
	var b strings.Builder

	// Row 1: headline metrics
	freeIn := components.Metric{Label: "Debt free in", Value: payoff.FormatPayoffTime(sum.Months), Color: t.Paid}
	freeOn := components.Metric{
		Label: "Debt-free date",
		Value: cli.FormatMonth(payoff.DebtFreeDate(a.start, sum.Months)),
		Note:  fmt.Sprintf("%d payments", sum.Months),
	}
	if sum.WontPayoff {
		freeIn = components.Metric{Label: "Debt free in", Value: "Never", Note: "payments too small", Color: t.Danger}
		freeOn = components.Metric{Label: "Debt-free date", Value: "—"}
	}

	saved := components.Metric{Label: "Saved vs minimums", Value: cli.FormatMoney(sv.InterestSaved), Color: t.Paid}
	switch {
	case sv.BaselineWontPayoff:
		saved.Note = "minimums alone never finish"
	case sv.MonthsSaved > 0:
		saved.Note = payoff.FormatPayoffTime(sv.MonthsSaved) + " sooner"
	default:
		saved.Note = "add an extra payment"
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		freeIn,
		freeOn,
		{Label: "Total interest", Value: cli.FormatMoney(sum.TotalInterest), Note: "total paid " + cli.FormatMoneyShort(sum.TotalPaid), Color: t.Interest},
		saved,
	}, cw))
	b.WriteString("\n")

	if sum.WontPayoff {
		b.WriteString(a.renderStallCard(cw))
		b.WriteString("\n")
	}

	// Row 2: remaining balance over time
	if n := a.schedule.Len(); n > 0 {
		values := make([]float64, 0, n+1)
		values = append(values, model.TotalBalance(a.debts))
		for _, m := range a.schedule.Months {
			values = append(values, m.TotalRemaining)
		}
		b.WriteString(components.ContentCard(
			"Remaining Balance",
			components.BalanceChart(values, monthLabels(a.start, len(values)), t.Owed, components.CardInnerWidth(cw), 10),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: payoff order and per-debt progress
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Payoff Order", a.renderPayoffOrder(components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Progress", a.renderProgress(components.CardInnerWidth(halves[1])), halves[1]),
	}))

	return b.String()
}

func (a App) renderPayoffOrder(innerW int) string {
	t := theme.Active
	numStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	whenStyle := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.summary.Payoffs) == 0 {
		return dimStyle.Render("Nothing is paid off under this plan.")
	}

	nameW := max(8, innerW-24)
	var b strings.Builder
	for i, p := range a.summary.Payoffs {
		if i > 0 {
			b.WriteString("\n")
		}
		when := fmt.Sprintf("%s · %s", cli.FormatMonth(payoff.DebtFreeDate(a.start, p.Month)), monthOrdinal(p.Month))
		b.WriteString(numStyle.Render(fmt.Sprintf("%2d. ", i+1)))
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(p.Name, nameW))))
		b.WriteString(whenStyle.Render(when))
	}
	return b.String()
}

func (a App) renderProgress(innerW int) string {
	payoffAt := make(map[string]int, len(a.summary.Payoffs))
	for _, p := range a.summary.Payoffs {
		payoffAt[p.ID] = p.Month
	}

	labelW := 12
	barW := max(10, innerW-labelW-20)
	var b strings.Builder
	for i, id := range a.schedule.Order {
		d, ok := a.debtByID(id)
		if !ok {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		note := "open"
		if m, ok := payoffAt[id]; ok {
			note = monthOrdinal(m)
		}
		b.WriteString(components.DebtProgressBar(d.Label(), d.PaidOffFraction(), note, labelW, barW))
	}
	return b.String()
}

func (a App) renderStallCard(cw int) string {
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var body string
	if len(a.schedule.StalledDebtIDs) > 0 {
		names := a.debtNames()
		stalled := make([]string, len(a.schedule.StalledDebtIDs))
		for i, id := range a.schedule.StalledDebtIDs {
			stalled[i] = names[id]
		}
		body = warn.Render("Payments never get ahead of interest: "+strings.Join(stalled, ", ")) + "\n" +
			muted.Render("Raise those minimums or add an extra payment with + or e.")
	} else {
		body = warn.Render(fmt.Sprintf("Still owing after %s.", payoff.FormatPayoffTime(a.schedule.Len()))) + "\n" +
			muted.Render("Add an extra payment to finish sooner.")
	}
	return components.ContentCard("Won't Pay Off", body, cw)
}

func (a App) debtByID(id string) (model.Debt, bool) {
	for _, d := range a.debts {
		if d.ID == id {
			return d, true
		}
	}
	return model.Debt{}, false
}

func monthOrdinal(m int) string {
	return fmt.Sprintf("month %d", m)
}
