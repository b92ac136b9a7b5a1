package cli

import (
	"strings"
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12, "$12.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-42.1, "-$42.10"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "$12.50"},
		{980, "$980"},
		{4200, "$4,200"},
		{15500, "$15.5K"},
		{2_500_000, "$2.5M"},
		{-980, "-$980"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(tt.in); got != tt.want {
			t.Errorf("FormatMoneyShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{24.99, "24.99%"},
		{6.4, "6.4%"},
		{18, "18%"},
		{0, "0%"},
	}
	for _, tt := range tests {
		if got := FormatRate(tt.in); got != tt.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(150, 100); got != "+$50.00" {
		t.Errorf("FormatDelta(150, 100) = %q", got)
	}
	if got := FormatDelta(100, 150); got != "-$50.00" {
		t.Errorf("FormatDelta(100, 150) = %q", got)
	}
}

func TestFormatMonth(t *testing.T) {
	got := FormatMonth(time.Date(2029, time.January, 1, 0, 0, 0, 0, time.UTC))
	if got != "Jan 2029" {
		t.Errorf("FormatMonth = %q, want Jan 2029", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Debt", "Balance"},
		Rows: [][]string{
			{"Visa", "$4,200.00"},
			Separator,
			{"Total", "$4,200.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Visa") || !strings.Contains(out, "Total") {
		t.Errorf("rows missing from output:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table rendered output")
	}
}

func TestDownsample(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := Downsample(in, 4)
	if len(got) != 4 || got[0] != 0 || got[3] != 9 {
		t.Errorf("Downsample = %v, want 4 points from 0 to 9", got)
	}
	if got := Downsample(in, 20); len(got) != len(in) {
		t.Errorf("Downsample larger n = %d points, want %d", len(got), len(in))
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
	got := []rune(RenderSparkline([]float64{0, 50, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("RenderSparkline = %q", string(got))
	}
}
