package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zoonmattau/budgeter-sub000/internal/config"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/source"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues backs the first-run setup form fields.
type setupValues struct {
	Strategy  string
	Extra     string
	Theme     string
	DebtsFile string
}

func defaultSetupValues(cfg config.Config) setupValues {
	extra := ""
	if cfg.General.ExtraPayment > 0 {
		extra = strconv.FormatFloat(cfg.General.ExtraPayment, 'f', 2, 64)
	}
	return setupValues{
		Strategy:  cfg.General.DefaultStrategy,
		Extra:     extra,
		Theme:     cfg.Appearance.Theme,
		DebtsFile: cfg.General.DebtsFile,
	}
}

// parseExtra reads a monthly extra payment. Blank means zero; a leading "$"
// and thousands separators are accepted.
func parseExtra(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("extra payment %q is not a number", s)
	}
	if v < 0 {
		return 0, errors.New("extra payment cannot be negative")
	}
	return v, nil
}

func validateDebtsFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := source.FormatOf(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	strategyOpts := make([]huh.Option[string], 0, len(model.Strategies))
	for _, s := range model.Strategies {
		label := "Avalanche · highest interest rate first"
		if s == model.Snowball {
			label = "Snowball · smallest balance first"
		}
		strategyOpts = append(strategyOpts, huh.NewOption(label, string(s)))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to debtplan").
				Description("Plan how to pay off your debts.\nThese defaults are saved to "+config.Path()+"."),
			huh.NewSelect[string]().
				Title("Payoff strategy").
				Description("Which debt gets your extra money first.").
				Options(strategyOpts...).
				Value(&vals.Strategy),
			huh.NewInput().
				Title("Extra payment per month").
				Description("Money on top of all minimum payments. Leave blank for none.").
				Placeholder("100.00").
				Value(&vals.Extra).
				Validate(func(s string) error {
					_, err := parseExtra(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Debts file").
				Description("Optional TOML, JSON or YAML file. Leave blank to use the local database.").
				Placeholder("~/debts.toml").
				Value(&vals.DebtsFile).
				Validate(validateDebtsFile),
		),
	).WithShowHelp(true)
}

// NewSetupForm returns the setup form used by `debtplan setup`, prefilled
// from cfg. Call ApplySetup once the form completes.
func NewSetupForm(cfg config.Config) (*huh.Form, func(*config.Config) error) {
	vals := defaultSetupValues(cfg)
	form := newSetupForm(&vals)
	return form, func(c *config.Config) error {
		return applySetup(c, vals)
	}
}

func applySetup(cfg *config.Config, vals setupValues) error {
	if s, err := model.ParseStrategy(vals.Strategy); err == nil {
		cfg.General.DefaultStrategy = string(s)
	}
	extra, err := parseExtra(vals.Extra)
	if err != nil {
		return err
	}
	cfg.General.ExtraPayment = extra
	cfg.General.DebtsFile = strings.TrimSpace(vals.DebtsFile)
	if vals.Theme != "" {
		cfg.Appearance.Theme = theme.ByName(vals.Theme).Name
	}
	return nil
}

// saveSetupConfig writes the form values to config and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	if err := applySetup(&cfg, a.setupVals); err != nil {
		return err
	}

	a.strategy = model.Strategy(cfg.General.DefaultStrategy)
	a.extra = cfg.General.ExtraPayment
	theme.SetActive(cfg.Appearance.Theme)

	return config.Save(cfg)
}
