// Package payoff simulates paying down several debts at once under a
// repayment strategy and a fixed monthly extra payment.
package payoff

import (
	"math"
	"sort"

	"github.com/zoonmattau/budgeter-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// account is the simulator's working copy of a debt.
type account struct {
	id      string
	name    string
	rate    decimal.Decimal // annual nominal percent
	minimum decimal.Decimal
	balance decimal.Decimal
}

func (a *account) owes() bool { return a.balance.IsPositive() }

// clamp maps negative and non-finite inputs to zero.
func clamp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

func amount(x float64) decimal.Decimal {
	return decimal.NewFromFloat(clamp(x))
}

func newAccounts(debts []model.Debt) []account {
	accounts := make([]account, len(debts))
	for i, d := range debts {
		accounts[i] = account{
			id:      d.ID,
			name:    d.Label(),
			rate:    amount(d.InterestRate),
			minimum: amount(d.MinimumPayment),
			balance: amount(d.Balance),
		}
	}
	return accounts
}

// priority returns account indices in extra-payment order. The order is
// taken from the starting balances and never changes during a run.
func priority(accounts []account, strategy model.Strategy) []int {
	order := make([]int, len(accounts))
	for i := range order {
		order[i] = i
	}

	less := func(a, b account) bool {
		if c := b.rate.Cmp(a.rate); c != 0 {
			return c < 0
		}
		if c := b.balance.Cmp(a.balance); c != 0 {
			return c < 0
		}
		return a.id < b.id
	}
	if strategy == model.Snowball {
		less = func(a, b account) bool {
			if c := a.balance.Cmp(b.balance); c != 0 {
				return c < 0
			}
			if c := b.rate.Cmp(a.rate); c != 0 {
				return c < 0
			}
			return a.id < b.id
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return less(accounts[order[i]], accounts[order[j]])
	})
	return order
}

// Order returns debt ids in the priority the strategy gives them.
func Order(debts []model.Debt, strategy model.Strategy) []string {
	accounts := newAccounts(debts)
	idx := priority(accounts, normalizeStrategy(strategy))
	ids := make([]string, len(idx))
	for i, j := range idx {
		ids[i] = accounts[j].id
	}
	return ids
}

func normalizeStrategy(s model.Strategy) model.Strategy {
	if s == model.Snowball {
		return model.Snowball
	}
	return model.Avalanche
}
