package cmd

import (
	"fmt"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"

	"github.com/spf13/cobra"
)

var (
	flagWhatIfStep   float64
	flagWhatIfCount  int
	flagWhatIfLevels []float64
)

var whatIfCmd = &cobra.Command{
	Use:   "whatif",
	Short: "See how different extra payments change the payoff",
	Example: `  debtplan whatif --step 100 --count 6
  debtplan whatif --levels 0,150,400`,
	RunE: runWhatIf,
}

func init() {
	whatIfCmd.Flags().Float64Var(&flagWhatIfStep, "step", 0, "Extra payment increment (default from config)")
	whatIfCmd.Flags().IntVar(&flagWhatIfCount, "count", 6, "Number of levels, starting at zero")
	whatIfCmd.Flags().Float64SliceVar(&flagWhatIfLevels, "levels", nil, "Explicit extra payment levels")
	rootCmd.AddCommand(whatIfCmd)
}

func runWhatIf(cmd *cobra.Command, _ []string) error {
	in, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	if len(in.Debts) == 0 {
		fmt.Println("\n  No debts found.")
		return nil
	}

	levels := flagWhatIfLevels
	if len(levels) == 0 {
		step := flagWhatIfStep
		if step <= 0 {
			step = appCfg.General.ExtraStep
		}
		if step <= 0 {
			step = 50
		}
		levels = payoff.Steps(step, flagWhatIfCount)
	}

	rows := payoff.WhatIf(in.Debts, in.Strategy, levels, in.MaxMonths)
	if flagJSON {
		return printJSON(rows)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		when := payoff.FormatPayoffTime(r.Months)
		if r.WontPayoff {
			when = cli.Bad("never")
		}
		out = append(out, []string{
			cli.FormatMoney(r.ExtraPayment),
			when,
			cli.FormatMoney(r.TotalInterest),
			fmt.Sprintf("%d", r.MonthsSaved),
			cli.Good(cli.FormatMoney(r.InterestSaved)),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WHAT IF  %s", in.Strategy)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Extra/mo", "Debt Free In", "Interest", "Months Saved", "Interest Saved"},
		Rows:    out,
	}))
	return nil
}
