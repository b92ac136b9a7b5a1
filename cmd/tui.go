package cmd

import (
	"context"
	"fmt"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/source"
	"github.com/zoonmattau/budgeter-sub000/internal/tui"
	"github.com/zoonmattau/budgeter-sub000/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// A debts file is read up front so its strategy and extra payment can
	// seed the plan; the database is loaded behind the spinner.
	var doc source.Document
	path := debtsPath()
	if path != "" {
		var err error
		if doc, err = source.Load(path); err != nil {
			return err
		}
	}
	in, err := resolveSettings(cmd, doc)
	if err != nil {
		return err
	}

	load := func(ctx context.Context) ([]model.Debt, string, error) {
		if path != "" {
			return doc.Debts, path, nil
		}
		debts, src, _, err := loadDebts(ctx)
		return debts, src, err
	}

	app := tui.NewApp(tui.Options{
		Load:      load,
		Strategy:  in.Strategy,
		Extra:     in.Extra,
		Step:      appCfg.General.ExtraStep,
		MaxMonths: in.MaxMonths,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
