package payoff

import (
	"fmt"
	"strings"
)

// FormatPayoffTime renders a month count as years and months.
// e.g., 27 -> "2 years 3 months", 6 -> "6 months", 12 -> "1 year"
func FormatPayoffTime(months int) string {
	if months <= 0 {
		return "0 months"
	}

	years := months / 12
	rest := months % 12

	var parts []string
	switch {
	case years == 1:
		parts = append(parts, "1 year")
	case years > 1:
		parts = append(parts, fmt.Sprintf("%d years", years))
	}
	switch {
	case rest == 1:
		parts = append(parts, "1 month")
	case rest > 1:
		parts = append(parts, fmt.Sprintf("%d months", rest))
	}
	return strings.Join(parts, " ")
}
