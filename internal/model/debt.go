// Package model defines domain types for debtplan debts, schedules, and summaries.
package model

import (
	"fmt"
	"strings"
)

// Strategy selects which debt receives the extra payment first.
type Strategy string

const (
	Avalanche Strategy = "avalanche" // highest rate first
	Snowball  Strategy = "snowball"  // smallest balance first
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{Avalanche, Snowball}

// ParseStrategy maps user input to a Strategy. Matching is case-insensitive.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Avalanche:
		return Avalanche, nil
	case Snowball:
		return Snowball, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want avalanche or snowball)", s)
}

// Other returns the competing strategy.
func (s Strategy) Other() Strategy {
	if s == Snowball {
		return Avalanche
	}
	return Snowball
}

// Debt is one account being paid down. Amounts are in currency units.
type Debt struct {
	ID             string  `json:"id" toml:"id" yaml:"id"`
	Name           string  `json:"name" toml:"name" yaml:"name"`
	Institution    string  `json:"institution,omitempty" toml:"institution,omitempty" yaml:"institution,omitempty"`
	Type           string  `json:"type,omitempty" toml:"type,omitempty" yaml:"type,omitempty"`
	Balance        float64 `json:"balance" toml:"balance" yaml:"balance"`
	InterestRate   float64 `json:"interest_rate" toml:"interest_rate" yaml:"interest_rate"` // annual nominal %
	MinimumPayment float64 `json:"minimum_payment" toml:"minimum_payment" yaml:"minimum_payment"`
	OriginalAmount float64 `json:"original_amount,omitempty" toml:"original_amount,omitempty" yaml:"original_amount,omitempty"`
}

// Label returns the name, falling back to the ID.
func (d Debt) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// PaidOffFraction reports how much of OriginalAmount has been repaid, in [0, 1].
// Returns 0 when no original amount is recorded.
func (d Debt) PaidOffFraction() float64 {
	if d.OriginalAmount <= 0 || d.Balance >= d.OriginalAmount {
		return 0
	}
	if d.Balance <= 0 {
		return 1
	}
	return 1 - d.Balance/d.OriginalAmount
}

// TotalBalance sums the balances of debts.
func TotalBalance(debts []Debt) float64 {
	var total float64
	for _, d := range debts {
		if d.Balance > 0 {
			total += d.Balance
		}
	}
	return total
}

// TotalMinimums sums the minimum payments of debts that still owe something.
func TotalMinimums(debts []Debt) float64 {
	var total float64
	for _, d := range debts {
		if d.Balance > 0 && d.MinimumPayment > 0 {
			total += d.MinimumPayment
		}
	}
	return total
}
