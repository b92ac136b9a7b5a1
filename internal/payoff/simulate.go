package payoff

import (
	"github.com/zoonmattau/budgeter-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultMaxMonths caps a simulation at 100 years.
const DefaultMaxMonths = 1200

var (
	monthsPerYearPct = decimal.NewFromInt(1200) // 12 months * 100 percent
	// Balances below half a cent count as paid.
	tolerance = decimal.New(5, -3)
)

// Plan is the full input to one simulation run.
type Plan struct {
	Debts        []model.Debt
	ExtraPayment float64
	Strategy     model.Strategy
	MaxMonths    int // 0 means DefaultMaxMonths
}

// Calculate simulates debts under strategy with a fixed monthly extra payment.
func Calculate(debts []model.Debt, extraPayment float64, strategy model.Strategy) model.Schedule {
	return Simulate(Plan{
		Debts:        debts,
		ExtraPayment: extraPayment,
		Strategy:     strategy,
	})
}

// Simulate runs the month-by-month payoff loop for p.
//
// The monthly budget is every open debt's minimum plus the extra payment,
// and it stays the same for the whole run. Each month accrues simple monthly
// interest on every open balance, applies each debt's minimum, then pours the
// rest of the budget down the fixed strategy order. A retired debt's minimum
// therefore rolls into that pool, and leftovers cascade to the next open debt
// within the same month. The run ends when every balance is zero, when a
// month makes no progress on any debt, or at the month ceiling.
func Simulate(p Plan) model.Schedule {
	strategy := normalizeStrategy(p.Strategy)
	maxMonths := p.MaxMonths
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}

	extra := amount(p.ExtraPayment)
	accounts := newAccounts(p.Debts)
	order := priority(accounts, strategy)

	sched := model.Schedule{
		Strategy:     strategy,
		ExtraPayment: cents(extra),
		Order:        make([]string, len(order)),
		Months:       []model.MonthSnapshot{},
		Payoffs:      []model.DebtPayoff{},
	}
	for i, j := range order {
		sched.Order[i] = accounts[j].id
	}

	if !anyOwed(accounts) {
		return sched
	}

	budget := extra
	for _, a := range accounts {
		if a.owes() {
			budget = budget.Add(a.minimum)
		}
	}

	cumulative := decimal.Zero
	for month := 1; month <= maxMonths; month++ {
		paid := make([]decimal.Decimal, len(accounts))
		open := make([]bool, len(accounts))
		start := make([]decimal.Decimal, len(accounts))
		for i := range accounts {
			start[i] = accounts[i].balance
		}

		// 1) Accrue interest on open balances.
		interest := decimal.Zero
		for i := range accounts {
			a := &accounts[i]
			if !a.owes() {
				continue
			}
			open[i] = true
			accrued := a.balance.Mul(a.rate).Div(monthsPerYearPct)
			a.balance = a.balance.Add(accrued)
			interest = interest.Add(accrued)
		}
		cumulative = cumulative.Add(interest)

		// 2) Minimum payments, never more than what is owed.
		pool := budget
		for i := range accounts {
			a := &accounts[i]
			if !a.owes() || !a.minimum.IsPositive() {
				continue
			}
			pay := decimal.Min(a.minimum, a.balance)
			a.balance = a.balance.Sub(pay)
			paid[i] = paid[i].Add(pay)
			pool = pool.Sub(pay)
		}

		// 3) Waterfall whatever is left of the budget in fixed priority order.
		for _, i := range order {
			if !pool.IsPositive() {
				break
			}
			a := &accounts[i]
			if !a.owes() {
				continue
			}
			pay := decimal.Min(pool, a.balance)
			a.balance = a.balance.Sub(pay)
			paid[i] = paid[i].Add(pay)
			pool = pool.Sub(pay)
		}

		progress := false
		for i := range accounts {
			a := &accounts[i]
			if a.balance.LessThan(tolerance) {
				a.balance = decimal.Zero
			}
			if open[i] && a.balance.LessThan(start[i]) {
				progress = true
			}
			if open[i] && !a.owes() {
				sched.Payoffs = append(sched.Payoffs, model.DebtPayoff{ID: a.id, Name: a.name, Month: month})
			}
		}

		// With nothing retired and no balance lower, next month repeats the
		// same payments against the same or more interest, forever.
		if !progress {
			sched.WontPayoff = true
			sched.StalledDebtIDs = owingIDs(accounts)
			return sched
		}

		// 4) Snapshot.
		sched.Months = append(sched.Months, snapshot(month, accounts, paid, interest, cumulative))

		// 5) Done once nothing is owed.
		if !anyOwed(accounts) {
			return sched
		}
	}

	sched.WontPayoff = true
	return sched
}

func snapshot(month int, accounts []account, paid []decimal.Decimal, interest, cumulative decimal.Decimal) model.MonthSnapshot {
	snap := model.MonthSnapshot{
		MonthIndex:         month,
		Balances:           make(map[string]float64, len(accounts)),
		Payments:           make(map[string]float64),
		InterestThisMonth:  cents(interest),
		CumulativeInterest: cents(cumulative),
	}

	// Totals are sums of the rounded per-debt figures so they add up exactly.
	remaining := decimal.Zero
	totalPaid := decimal.Zero
	for i, a := range accounts {
		b := a.balance.Round(2)
		remaining = remaining.Add(b)
		snap.Balances[a.id] += b.InexactFloat64()
		if paid[i].IsPositive() {
			p := paid[i].Round(2)
			totalPaid = totalPaid.Add(p)
			snap.Payments[a.id] += p.InexactFloat64()
		}
	}
	snap.TotalPaid = totalPaid.InexactFloat64()
	snap.TotalRemaining = remaining.InexactFloat64()
	return snap
}

func owingIDs(accounts []account) []string {
	var ids []string
	for _, a := range accounts {
		if a.owes() {
			ids = append(ids, a.id)
		}
	}
	return ids
}

func anyOwed(accounts []account) bool {
	for i := range accounts {
		if accounts[i].owes() {
			return true
		}
	}
	return false
}

// cents rounds to two decimal places for output.
func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
