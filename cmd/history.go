package cmd

import (
	"fmt"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded projections, newest first",
	Long:  "Projections are recorded by `debtplan plan --record` and by the serve snapshot job.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 30, "Max projections to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	projections, err := st.Projections(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(projections)
	}
	if len(projections) == 0 {
		fmt.Println("\n  No projections recorded yet. Run `debtplan plan --record`.")
		return nil
	}

	rows := make([][]string, 0, len(projections))
	balances := make([]float64, len(projections))
	for i, p := range projections {
		freeOn := cli.FormatMonth(p.DebtFreeDate)
		when := payoff.FormatPayoffTime(p.Months)
		if p.WontPayoff {
			freeOn, when = "—", cli.Bad("never")
		}
		rows = append(rows, []string{
			p.RecordedAt.Local().Format("2006-01-02 15:04"),
			string(p.Strategy),
			cli.FormatMoney(p.ExtraPayment),
			cli.FormatMoney(p.TotalBalance),
			when,
			cli.FormatMoney(p.TotalInterest),
			freeOn,
		})
		// oldest on the left
		balances[len(projections)-1-i] = p.TotalBalance
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Projection History",
		Headers: []string{"Recorded", "Strategy", "Extra", "Balance", "Debt Free In", "Interest", "Debt-Free Date"},
		Rows:    rows,
	}))
	if len(balances) > 1 {
		newest, oldest := balances[len(balances)-1], balances[0]
		fmt.Println()
		fmt.Printf("  Balance  %s  %s since first record\n",
			cli.RenderSparkline(balances), cli.FormatDelta(newest, oldest))
	}
	return nil
}
