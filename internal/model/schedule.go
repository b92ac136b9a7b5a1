package model

import "time"

// MonthSnapshot is the state of every debt after one simulated month.
// All amounts are rounded to cents.
type MonthSnapshot struct {
	MonthIndex         int                `json:"month"`
	Balances           map[string]float64 `json:"balances"`
	Payments           map[string]float64 `json:"payments"`
	InterestThisMonth  float64            `json:"interest"`
	CumulativeInterest float64            `json:"cumulative_interest"`
	TotalPaid          float64            `json:"total_paid"`
	TotalRemaining     float64            `json:"total_remaining"`
}

// Schedule is the month-by-month payoff simulation for one strategy.
type Schedule struct {
	Strategy     Strategy        `json:"strategy"`
	ExtraPayment float64         `json:"extra_payment"`
	Order        []string        `json:"order"` // debt ids in extra-payment priority
	Months       []MonthSnapshot `json:"months"`
	Payoffs      []DebtPayoff    `json:"payoffs"` // in the order debts reached zero

	// WontPayoff is set when the debts cannot be retired under these settings,
	// either because a month made no progress on any debt (StalledDebtIDs) or
	// by hitting the month ceiling.
	WontPayoff     bool     `json:"wont_payoff"`
	StalledDebtIDs []string `json:"stalled_debt_ids,omitempty"`
}

// Len returns the number of simulated months.
func (s Schedule) Len() int { return len(s.Months) }

// Last returns the final snapshot, or the zero snapshot for an empty schedule.
func (s Schedule) Last() MonthSnapshot {
	if len(s.Months) == 0 {
		return MonthSnapshot{}
	}
	return s.Months[len(s.Months)-1]
}

// DebtPayoff records the month a debt reached zero.
type DebtPayoff struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Month int    `json:"month"`
}

// Summary holds the headline metrics of a schedule.
type Summary struct {
	Strategy      Strategy     `json:"strategy"`
	ExtraPayment  float64      `json:"extra_payment"`
	Months        int          `json:"months"`
	TotalInterest float64      `json:"total_interest"`
	TotalPaid     float64      `json:"total_paid"`
	WontPayoff    bool         `json:"wont_payoff"`
	Payoffs       []DebtPayoff `json:"payoffs"`
}

// Comparison holds both strategies run against the same inputs.
type Comparison struct {
	ExtraPayment      float64  `json:"extra_payment"`
	Avalanche         Summary  `json:"avalanche"`
	Snowball          Summary  `json:"snowball"`
	AvalancheSchedule Schedule `json:"-"`
	SnowballSchedule  Schedule `json:"-"`
}

// Savings compares a run with extra payment against the minimum-only baseline.
type Savings struct {
	Strategy       Strategy `json:"strategy"`
	BaselineMonths int      `json:"baseline_months"`
	Months         int      `json:"months"`
	MonthsSaved    int      `json:"months_saved"`
	InterestSaved  float64  `json:"interest_saved"`

	// BaselineWontPayoff means minimum payments alone never retire the debts,
	// so the saved figures are left at zero.
	BaselineWontPayoff bool `json:"baseline_wont_payoff"`
}

// WhatIfRow is one extra-payment level of a what-if sweep.
type WhatIfRow struct {
	ExtraPayment  float64 `json:"extra_payment"`
	Months        int     `json:"months"`
	TotalInterest float64 `json:"total_interest"`
	MonthsSaved   int     `json:"months_saved"`
	InterestSaved float64 `json:"interest_saved"`
	WontPayoff    bool    `json:"wont_payoff"`
}

// Projection is a recorded plan summary, stored so progress can be tracked over time.
type Projection struct {
	ID            int64     `json:"id"`
	RecordedAt    time.Time `json:"recorded_at"`
	Strategy      Strategy  `json:"strategy"`
	ExtraPayment  float64   `json:"extra_payment"`
	TotalBalance  float64   `json:"total_balance"`
	Months        int       `json:"months"`
	TotalInterest float64   `json:"total_interest"`
	WontPayoff    bool      `json:"wont_payoff"`
	DebtFreeDate  time.Time `json:"debt_free_date"`
}
