package payoff

import (
	"sort"
	"sync"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

// WhatIf simulates several extra-payment levels for the same debts and
// strategy. Rows come back sorted by extra payment; each is compared with the
// zero-extra baseline. Runs are independent and execute concurrently.
func WhatIf(debts []model.Debt, strategy model.Strategy, extras []float64, maxMonths int) []model.WhatIfRow {
	levels := make([]float64, len(extras))
	for i, x := range extras {
		levels[i] = clamp(x)
	}
	sort.Float64s(levels)

	baseline := Simulate(Plan{Debts: debts, Strategy: strategy, MaxMonths: maxMonths})

	rows := make([]model.WhatIfRow, len(levels))
	var wg sync.WaitGroup
	for i, extra := range levels {
		wg.Add(1)
		go func(i int, extra float64) {
			defer wg.Done()
			s := Simulate(Plan{Debts: debts, ExtraPayment: extra, Strategy: strategy, MaxMonths: maxMonths})
			sv := SavingsBetween(s, baseline)
			rows[i] = model.WhatIfRow{
				ExtraPayment:  s.ExtraPayment,
				Months:        s.Len(),
				TotalInterest: s.Last().CumulativeInterest,
				MonthsSaved:   sv.MonthsSaved,
				InterestSaved: sv.InterestSaved,
				WontPayoff:    s.WontPayoff,
			}
		}(i, extra)
	}
	wg.Wait()

	return rows
}

// Steps returns count extra-payment levels starting at zero, step apart.
func Steps(step float64, count int) []float64 {
	step = clamp(step)
	if count < 1 {
		count = 1
	}
	levels := make([]float64, count)
	for i := range levels {
		levels[i] = step * float64(i)
	}
	return levels
}
