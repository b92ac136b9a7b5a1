// Package tui provides the interactive Bubble Tea dashboard for debtplan.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/config"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/components"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Loader fetches the debts to plan. source describes where they came from.
type Loader func(ctx context.Context) (debts []model.Debt, source string, err error)

// DebtsLoadedMsg is sent when the loader finishes.
type DebtsLoadedMsg struct {
	Debts  []model.Debt
	Source string
	Err    error
}

type clearMessageMsg struct{ seq int }

// Options configures a new App.
type Options struct {
	Load      Loader
	Strategy  model.Strategy
	Extra     float64
	Step      float64
	MaxMonths int
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	debts   []model.Debt
	source  string
	loaded  bool
	loadErr error
	load    Loader

	// Plan inputs
	strategy  model.Strategy
	extra     float64
	step      float64
	maxMonths int

	// Derived from the inputs on every change
	schedule   model.Schedule
	summary    model.Summary
	comparison model.Comparison
	savings    model.Savings
	whatIf     []model.WhatIfRow
	start      time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int // schedule tab first row
	cursor    int // debts tab selection

	// Editing the extra payment inline
	editing    bool
	extraInput textinput.Model

	message    string
	messageSeq int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner spinner.Model
	now     func() time.Time
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5

	whatIfLevels   = 6
	messageTimeout = 3 * time.Second
)

const (
	tabOverview = iota
	tabSchedule
	tabCompare
	tabDebts
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	strategy := opts.Strategy
	if strategy == "" {
		strategy = model.Avalanche
	}
	step := opts.Step
	if step <= 0 {
		step = 50
	}

	return App{
		load:      opts.Load,
		strategy:  strategy,
		extra:     max(0, opts.Extra),
		step:      step,
		maxMonths: opts.MaxMonths,
		needSetup: !config.Exists(),
		spinner:   sp,
		now:       time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDebtsCmd(a.load),
		a.spinner.Tick,
	)
}

// recompute reruns every simulation the tabs display.
func (a *App) recompute() {
	a.start = a.now()
	a.schedule = payoff.Simulate(payoff.Plan{
		Debts:        a.debts,
		ExtraPayment: a.extra,
		Strategy:     a.strategy,
		MaxMonths:    a.maxMonths,
	})
	a.summary = payoff.Summarize(a.schedule)
	a.comparison = payoff.CompareN(a.debts, a.extra, a.maxMonths)
	a.savings = payoff.ComputeSavings(a.debts, a.extra, a.strategy, a.maxMonths)

	levels := payoff.Steps(a.step, whatIfLevels)
	if !containsLevel(levels, a.extra) {
		levels = append(levels, a.extra)
	}
	a.whatIf = payoff.WhatIf(a.debts, a.strategy, levels, a.maxMonths)

	if last := a.schedule.Len() - 1; a.scroll > last {
		a.scroll = max(0, last)
	}
	if a.cursor >= len(a.debts) {
		a.cursor = max(0, len(a.debts)-1)
	}
}

func containsLevel(levels []float64, x float64) bool {
	for _, l := range levels {
		if l == x {
			return true
		}
	}
	return false
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveSelection(-1)
		case tea.MouseButtonWheelDown:
			a.moveSelection(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := components.TabAtX(a.activeTab, msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DebtsLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.debts = msg.Debts
		a.source = msg.Source
		a.recompute()

		if a.needSetup {
			a.setupVals = defaultSetupValues(loadConfigOrDefault())
			a.setupForm = newSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case clearMessageMsg:
		if msg.seq == a.messageSeq {
			a.message = ""
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editing {
		var cmd tea.Cmd
		a.extraInput, cmd = a.extraInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editing {
		return a.updateExtraInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "s":
		a.strategy = a.strategy.Other()
		a.recompute()
		return a.flash("strategy: " + string(a.strategy))
	case "+", "=":
		a.extra += a.step
		a.recompute()
		return a, nil
	case "-", "_":
		a.extra = max(0, a.extra-a.step)
		a.recompute()
		return a, nil
	case "e":
		return a.startEditExtra()
	case "t":
		next := theme.Next(theme.Active.Name)
		theme.SetActive(next.Name)
		return a.flash("theme: " + next.Name)
	case "w":
		return a.saveDefaults()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "j", "down":
		a.moveSelection(1)
		return a, nil
	case "k", "up":
		a.moveSelection(-1)
		return a, nil
	case "g", "home":
		a.scroll, a.cursor = 0, 0
		return a, nil
	case "G", "end":
		a.scroll = max(0, a.schedule.Len()-1)
		a.cursor = max(0, len(a.debts)-1)
		return a, nil
	case "ctrl+d":
		a.moveSelection(a.halfPage())
		return a, nil
	case "ctrl+u":
		a.moveSelection(-a.halfPage())
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) halfPage() int {
	return max(minHalfPageScroll, (a.height-scrollOverhead)/2)
}

// moveSelection scrolls the schedule or moves the debts cursor by delta.
func (a *App) moveSelection(delta int) {
	switch a.activeTab {
	case tabSchedule:
		a.scroll = min(max(0, a.scroll+delta), max(0, a.schedule.Len()-1))
	case tabDebts:
		a.cursor = min(max(0, a.cursor+delta), max(0, len(a.debts)-1))
	}
}

func (a App) flash(text string) (tea.Model, tea.Cmd) {
	a.messageSeq++
	a.message = text
	seq := a.messageSeq
	return a, tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

func (a App) startEditExtra() (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Prompt = "Extra per month: $"
	ti.Placeholder = "0.00"
	ti.CharLimit = 12
	ti.Width = 14
	ti.SetValue(fmt.Sprintf("%.2f", a.extra))
	ti.Focus()

	a.editing = true
	a.extraInput = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateExtraInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v, err := parseExtra(a.extraInput.Value())
		a.editing = false
		if err != nil {
			return a.flash(err.Error())
		}
		a.extra = v
		a.recompute()
		return a, nil
	case "esc":
		a.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.extraInput, cmd = a.extraInput.Update(msg)
	return a, cmd
}

// saveDefaults persists the current strategy and extra payment to config.
func (a App) saveDefaults() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	cfg.General.DefaultStrategy = string(a.strategy)
	cfg.General.ExtraPayment = a.extra
	cfg.Appearance.Theme = theme.Active.Name
	if err := config.Save(cfg); err != nil {
		return a.flash("save failed: " + err.Error())
	}
	return a.flash("saved as defaults")
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		err := a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		a.recompute()
		if err != nil {
			return a.flash("setup not saved: " + err.Error())
		}
		return a.flash("setup saved to " + config.Path())
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  debtplan needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ debtplan"))
	b.WriteString(subtitleStyle.Render(" · Debt Payoff Planner"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading debts..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Key).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o h c d", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Scroll schedule / select debt"},
			{"g G", "First / Last"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Plan", []struct{ key, desc string }{
			{"s", "Switch avalanche / snowball"},
			{"+ -", fmt.Sprintf("Extra payment ± %s", cli.FormatMoney(a.step))},
			{"e", "Type an extra payment"},
			{"w", "Save as defaults"},
			{"t", "Next theme"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// planLabel summarizes the active plan for the header and status bar.
func (a App) planLabel() string {
	return fmt.Sprintf("%s +%s/mo", a.strategy, cli.FormatMoney(a.extra))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	planRow := pill.Render(" ") + accent.Render(string(a.strategy)) +
		pill.Render(" │ extra ") + accent.Render(cli.FormatMoney(a.extra)+"/mo")
	if a.source != "" {
		planRow += pill.Render(" │ " + a.source)
	}
	if a.editing {
		planRow += pill.Render(" │ ") + a.extraInput.View()
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(planRow)

	statusBar := components.RenderStatusBar(w, a.planLabel(), a.message)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Could not load debts", a.loadErr.Error(), cw)
	case len(a.debts) == 0:
		content = components.ContentCard("No debts",
			"Add one with `debtplan debts add` or point --debts at a TOML, JSON or YAML file.", cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabSchedule:
			content = a.renderScheduleTab(cw, contentH)
		case tabCompare:
			content = a.renderCompareTab(cw)
		case tabDebts:
			content = a.renderDebtsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// loadDebtsCmd runs the loader off the UI goroutine.
func loadDebtsCmd(load Loader) tea.Cmd {
	return func() tea.Msg {
		if load == nil {
			return DebtsLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		debts, source, err := load(ctx)
		return DebtsLoadedMsg{Debts: debts, Source: source, Err: err}
	}
}

// monthLabels builds x-axis labels for months 0..n-1 from start: the month
// abbreviation, or the year in January.
func monthLabels(start time.Time, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		m := payoff.DebtFreeDate(start, i)
		if m.Month() == time.January {
			labels[i] = m.Format("2006")
		} else {
			labels[i] = m.Format("Jan")
		}
	}
	return labels
}

// debtNames maps debt ids to display labels.
func (a App) debtNames() map[string]string {
	names := make(map[string]string, len(a.debts))
	for _, d := range a.debts {
		names[d.ID] = d.Label()
	}
	return names
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
