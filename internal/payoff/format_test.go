package payoff

import "testing"

func TestFormatPayoffTime(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{-3, "0 months"},
		{0, "0 months"},
		{1, "1 month"},
		{6, "6 months"},
		{11, "11 months"},
		{12, "1 year"},
		{13, "1 year 1 month"},
		{14, "1 year 2 months"},
		{24, "2 years"},
		{25, "2 years 1 month"},
		{27, "2 years 3 months"},
		{1200, "100 years"},
	}
	for _, tt := range tests {
		if got := FormatPayoffTime(tt.months); got != tt.want {
			t.Errorf("FormatPayoffTime(%d) = %q, want %q", tt.months, got, tt.want)
		}
	}
}
