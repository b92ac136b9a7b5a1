package payoff

import (
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// Summarize derives headline metrics from a schedule.
func Summarize(s model.Schedule) model.Summary {
	last := s.Last()
	var paid decimal.Decimal
	for _, m := range s.Months {
		paid = paid.Add(decimal.NewFromFloat(m.TotalPaid))
	}

	payoffs := make([]model.DebtPayoff, len(s.Payoffs))
	copy(payoffs, s.Payoffs)

	return model.Summary{
		Strategy:      s.Strategy,
		ExtraPayment:  s.ExtraPayment,
		Months:        s.Len(),
		TotalInterest: last.CumulativeInterest,
		TotalPaid:     cents(paid),
		WontPayoff:    s.WontPayoff,
		Payoffs:       payoffs,
	}
}

// Compare runs avalanche and snowball against the same debts and extra payment.
func Compare(debts []model.Debt, extraPayment float64) model.Comparison {
	return CompareN(debts, extraPayment, 0)
}

// CompareN is Compare with an explicit month ceiling.
func CompareN(debts []model.Debt, extraPayment float64, maxMonths int) model.Comparison {
	av := Simulate(Plan{Debts: debts, ExtraPayment: extraPayment, Strategy: model.Avalanche, MaxMonths: maxMonths})
	sb := Simulate(Plan{Debts: debts, ExtraPayment: extraPayment, Strategy: model.Snowball, MaxMonths: maxMonths})
	return model.Comparison{
		ExtraPayment:      av.ExtraPayment,
		Avalanche:         Summarize(av),
		Snowball:          Summarize(sb),
		AvalancheSchedule: av,
		SnowballSchedule:  sb,
	}
}

// Recommended picks the strategy with less total interest, then fewer
// months. Avalanche wins ties. A strategy that pays off beats one that doesn't.
func Recommended(c model.Comparison) model.Strategy {
	a, s := c.Avalanche, c.Snowball
	switch {
	case a.WontPayoff != s.WontPayoff:
		if a.WontPayoff {
			return model.Snowball
		}
		return model.Avalanche
	case s.TotalInterest < a.TotalInterest:
		return model.Snowball
	case s.TotalInterest == a.TotalInterest && s.Months < a.Months:
		return model.Snowball
	}
	return model.Avalanche
}

// ComputeSavings measures what the extra payment buys compared with paying
// only the minimums. It runs a second, zero-extra simulation.
func ComputeSavings(debts []model.Debt, extraPayment float64, strategy model.Strategy, maxMonths int) model.Savings {
	actual := Simulate(Plan{Debts: debts, ExtraPayment: extraPayment, Strategy: strategy, MaxMonths: maxMonths})
	baseline := Simulate(Plan{Debts: debts, ExtraPayment: 0, Strategy: strategy, MaxMonths: maxMonths})
	return SavingsBetween(actual, baseline)
}

// SavingsBetween compares an actual schedule against a minimum-only baseline.
// Saved figures are never negative.
func SavingsBetween(actual, baseline model.Schedule) model.Savings {
	sv := model.Savings{
		Strategy:           actual.Strategy,
		BaselineMonths:     baseline.Len(),
		Months:             actual.Len(),
		BaselineWontPayoff: baseline.WontPayoff,
	}
	if baseline.WontPayoff || actual.WontPayoff {
		return sv
	}
	if d := baseline.Len() - actual.Len(); d > 0 {
		sv.MonthsSaved = d
	}
	saved := decimal.NewFromFloat(baseline.Last().CumulativeInterest).
		Sub(decimal.NewFromFloat(actual.Last().CumulativeInterest))
	if saved.IsPositive() {
		sv.InterestSaved = cents(saved)
	}
	return sv
}

// DebtFreeDate returns the first day of the month in which a schedule of
// the given length, starting the month after start, finishes.
func DebtFreeDate(start time.Time, months int) time.Time {
	if months < 0 {
		months = 0
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	return first.AddDate(0, months, 0)
}
