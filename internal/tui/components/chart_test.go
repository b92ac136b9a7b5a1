package components

import (
	"strings"
	"testing"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{600, 100},
		{1200, 200},
		{2500, 500},
		{40000, 5000},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.5, "$0.50"},
		{250, "$250"},
		{2000, "$2k"},
		{2500, "$2.5k"},
		{3e6, "$3M"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSampleSeries(t *testing.T) {
	values := make([]float64, 100)
	labels := make([]string, 100)
	for i := range values {
		values[i] = float64(i)
		labels[i] = "m"
	}
	v, l := sampleSeries(values, labels, 10)
	if len(v) != 10 || len(l) != 10 {
		t.Fatalf("sampled lengths = %d/%d, want 10", len(v), len(l))
	}
	if v[0] != 0 || v[9] != 99 {
		t.Errorf("endpoints = %v..%v, want 0..99", v[0], v[9])
	}

	short, _ := sampleSeries(values[:5], nil, 10)
	if len(short) != 5 {
		t.Errorf("short series resampled to %d points", len(short))
	}
}

func TestBalanceChartHasAxis(t *testing.T) {
	out := BalanceChart([]float64{2500, 2000, 1400, 700, 0}, []string{"Jan", "Feb", "Mar", "Apr", "May"}, "#DA702C", 60, 8)
	if !strings.Contains(out, "└") {
		t.Error("chart is missing the x axis")
	}
	if !strings.Contains(out, "Jan") {
		t.Error("chart is missing x labels")
	}

	tiny := BalanceChart([]float64{3, 2, 1}, nil, "#DA702C", 10, 2)
	if strings.Contains(tiny, "└") {
		t.Error("tiny chart should fall back to a sparkline")
	}
}
