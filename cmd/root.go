// Package cmd implements the debtplan CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zoonmattau/budgeter-sub000/internal/config"
	"github.com/zoonmattau/budgeter-sub000/internal/logging"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/source"
	"github.com/zoonmattau/budgeter-sub000/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDebts     string
	flagExtra     float64
	flagStrategy  string
	flagMaxMonths int
	flagQuiet     bool
	flagVerbose   bool
	flagJSON      bool
)

// appCfg is loaded once per invocation in PersistentPreRunE.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "debtplan",
	Short: "Debt payoff planner",
	Long:  "Simulate paying off your debts with the avalanche or snowball strategy.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := slog.LevelWarn
		switch {
		case flagVerbose:
			level = slog.LevelDebug
		case flagQuiet:
			level = slog.LevelError
		}
		logging.Setup(level)

		cfg, err := config.Load()
		if err != nil {
			slog.Warn("using default config", "err", err)
		}
		appCfg = cfg
		return nil
	},
	SilenceUsage: true,
	RunE:         runPlan,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDebts, "debts", "f", "", "Debts file (.toml, .json, .yaml); defaults to the local database")
	rootCmd.PersistentFlags().Float64VarP(&flagExtra, "extra", "x", 0, "Extra payment per month on top of minimums")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Payoff strategy: avalanche or snowball")
	rootCmd.PersistentFlags().IntVar(&flagMaxMonths, "max-months", 0, "Give up after this many months (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

// planInput is everything one simulation needs, resolved from flags, the
// debts file, and config in that order of precedence.
type planInput struct {
	Debts     []model.Debt
	Source    string
	Strategy  model.Strategy
	Extra     float64
	MaxMonths int
}

func resolvePlan(cmd *cobra.Command) (planInput, error) {
	debts, src, doc, err := loadDebts(cmd.Context())
	if err != nil {
		return planInput{}, err
	}
	in, err := resolveSettings(cmd, doc)
	in.Debts, in.Source = debts, src
	return in, err
}

// resolveSettings picks strategy, extra payment and month ceiling. Flags beat
// the debts file, which beats config.
func resolveSettings(cmd *cobra.Command, doc source.Document) (planInput, error) {
	in := planInput{
		Extra:     appCfg.General.ExtraPayment,
		MaxMonths: appCfg.General.MaxMonths,
	}
	strategy := appCfg.General.DefaultStrategy
	if doc.Strategy != "" {
		strategy = doc.Strategy
	}
	if doc.ExtraPayment > 0 {
		in.Extra = doc.ExtraPayment
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		strategy = flagStrategy
	}
	if flags.Changed("extra") {
		in.Extra = flagExtra
	}
	if flags.Changed("max-months") {
		in.MaxMonths = flagMaxMonths
	}

	var err error
	in.Strategy, err = model.ParseStrategy(strategy)
	if err != nil {
		if flags.Changed("strategy") {
			return in, err
		}
		slog.Warn("falling back to avalanche", "err", err)
		in.Strategy = model.Avalanche
	}
	if in.Extra < 0 {
		return in, fmt.Errorf("extra payment cannot be negative (got %.2f)", in.Extra)
	}
	return in, nil
}

// debtsPath is the file to read debts from, or "" for the database.
func debtsPath() string {
	if flagDebts != "" {
		return flagDebts
	}
	return appCfg.General.DebtsFile
}

// loadDebts reads debts from the debts file when one is set, otherwise from
// the database.
func loadDebts(ctx context.Context) ([]model.Debt, string, source.Document, error) {
	if path := debtsPath(); path != "" {
		doc, err := source.Load(path)
		if err != nil {
			return nil, "", doc, err
		}
		slog.Debug("loaded debts file", "path", path, "debts", len(doc.Debts))
		return doc.Debts, path, doc, nil
	}

	st, err := openStore()
	if err != nil {
		return nil, "", source.Document{}, err
	}
	defer st.Close()

	debts, err := st.ListDebts(ctx)
	if err != nil {
		return nil, "", source.Document{}, err
	}
	slog.Debug("loaded debts from store", "driver", appCfg.Store.Driver, "debts", len(debts))
	return debts, appCfg.Store.Driver, source.Document{}, nil
}

func openStore() (*store.Store, error) {
	driver := appCfg.Store.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}
	dsn := config.StoreDSN(appCfg)
	if driver == config.DriverSQLite {
		if err := os.MkdirAll(config.DataDir(), 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	return store.Open(driver, dsn)
}
