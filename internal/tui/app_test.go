package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/config"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func testDebts() []model.Debt {
	return []model.Debt{
		{ID: "a", Name: "Card", Balance: 500, InterestRate: 20, MinimumPayment: 25, OriginalAmount: 1000},
		{ID: "b", Name: "Car", Balance: 2000, InterestRate: 5, MinimumPayment: 50},
	}
}

// loadedApp returns an App that has received its debts and skipped setup.
func loadedApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{Strategy: model.Avalanche, Extra: 100, Step: 50})
	a.needSetup = false
	a.now = func() time.Time { return time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC) }

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.(App).Update(DebtsLoadedMsg{Debts: testDebts(), Source: "test"})
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestLoadedAppComputesPlan(t *testing.T) {
	a := loadedApp(t)
	if !a.loaded {
		t.Fatal("app not loaded")
	}
	if a.summary.Months != 15 {
		t.Errorf("Months = %d, want 15", a.summary.Months)
	}
	if a.savings.MonthsSaved != 23 {
		t.Errorf("MonthsSaved = %d, want 23", a.savings.MonthsSaved)
	}
	if len(a.whatIf) != whatIfLevels {
		t.Errorf("what-if rows = %d, want %d (100 is already a step)", len(a.whatIf), whatIfLevels)
	}
}

func TestKeysChangePlan(t *testing.T) {
	a := loadedApp(t)

	a = press(t, a, "s")
	if a.strategy != model.Snowball || a.schedule.Strategy != model.Snowball {
		t.Errorf("after s: strategy = %s, schedule = %s", a.strategy, a.schedule.Strategy)
	}
	if a.message == "" {
		t.Error("strategy switch should flash a message")
	}

	a = press(t, a, "+", "+")
	if a.extra != 200 {
		t.Errorf("extra after ++ = %.2f, want 200", a.extra)
	}
	a = press(t, a, "-", "-", "-", "-", "-")
	if a.extra != 0 {
		t.Errorf("extra never goes below zero, got %.2f", a.extra)
	}
	if a.savings.MonthsSaved != 0 || a.summary.Months != a.savings.BaselineMonths {
		t.Errorf("minimum-only plan = %d months, savings %+v", a.summary.Months, a.savings)
	}
}

func TestEditExtra(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "e")
	if !a.editing {
		t.Fatal("e should start editing")
	}
	a.extraInput.SetValue("$1,000")
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if a.editing || a.extra != 1000 {
		t.Errorf("editing=%v extra=%.2f, want false/1000", a.editing, a.extra)
	}

	a = press(t, a, "e")
	a.extraInput.SetValue("lots")
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if a.extra != 1000 || !strings.Contains(a.message, "not a number") {
		t.Errorf("bad input: extra=%.2f message=%q", a.extra, a.message)
	}
}

func TestTabNavigation(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "c")
	if a.activeTab != tabCompare {
		t.Errorf("c -> tab %d, want %d", a.activeTab, tabCompare)
	}

	// Click on the Debts tab label.
	x := 1
	for i := 0; i < tabDebts; i++ {
		x += components.TabVisualWidth(components.Tabs[i], i == a.activeTab) + 2
	}
	m, _ := a.Update(tea.MouseMsg{X: x + 1, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	a = m.(App)
	if a.activeTab != tabDebts {
		t.Errorf("click -> tab %d, want %d", a.activeTab, tabDebts)
	}
}

func TestScheduleScrollClamps(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "h")
	a = press(t, a, "j", "down")
	if a.scroll != 2 {
		t.Errorf("scroll = %d, want 2", a.scroll)
	}
	a = press(t, a, "G")
	if a.scroll != a.schedule.Len()-1 {
		t.Errorf("G -> scroll %d, want %d", a.scroll, a.schedule.Len()-1)
	}
	a = press(t, a, "ctrl+d")
	if a.scroll != a.schedule.Len()-1 {
		t.Errorf("scroll ran past the end: %d", a.scroll)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t)
	for tab, want := range []string{"Debt free in", "Schedule", "Verdict", "Debts"} {
		a.activeTab = tab
		out := a.View()
		if !strings.Contains(out, want) {
			t.Errorf("tab %d view missing %q", tab, want)
		}
	}

	a.width = 40
	if out := a.View(); !strings.Contains(out, "too narrow") {
		t.Errorf("narrow view = %q", out)
	}
}

func TestViewWithoutDebts(t *testing.T) {
	a := NewApp(Options{})
	a.needSetup = false
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.(App).Update(DebtsLoadedMsg{})
	if out := m.(App).View(); !strings.Contains(out, "No debts") {
		t.Error("empty view should explain how to add debts")
	}
}

func TestParseExtra(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"150", 150, false},
		{" $1,250.50 ", 1250.5, false},
		{"-5", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseExtra(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseExtra(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseExtra(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applySetup(&cfg, setupValues{
		Strategy:  "Snowball",
		Extra:     "75",
		Theme:     "tokyo-night",
		DebtsFile: " debts.toml ",
	})
	if err != nil {
		t.Fatalf("applySetup: %v", err)
	}
	if cfg.General.DefaultStrategy != "snowball" || cfg.General.ExtraPayment != 75 {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.General.DebtsFile != "debts.toml" || cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("file/theme = %q/%q", cfg.General.DebtsFile, cfg.Appearance.Theme)
	}

	if err := applySetup(&cfg, setupValues{Extra: "-1"}); err == nil {
		t.Error("negative extra should be rejected")
	}
}

func TestMonthLabels(t *testing.T) {
	start := time.Date(2026, time.November, 3, 0, 0, 0, 0, time.UTC)
	got := monthLabels(start, 4)
	want := []string{"Nov", "Dec", "2027", "Feb"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("monthLabels = %v, want %v", got, want)
			break
		}
	}
}
