package cmd

import (
	"fmt"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare avalanche and snowball side by side",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

type compareOutput struct {
	Comparison  model.Comparison `json:"comparison"`
	Recommended model.Strategy   `json:"recommended"`
}

func runCompare(cmd *cobra.Command, _ []string) error {
	in, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	if len(in.Debts) == 0 {
		fmt.Println("\n  No debts found.")
		return nil
	}

	c := payoff.CompareN(in.Debts, in.Extra, in.MaxMonths)
	best := payoff.Recommended(c)
	if flagJSON {
		return printJSON(compareOutput{Comparison: c, Recommended: best})
	}

	now := time.Now()
	cell := func(s model.Summary) []string {
		if s.WontPayoff {
			return []string{cli.Bad("never"), "—", cli.FormatMoney(s.TotalInterest), cli.FormatMoney(s.TotalPaid)}
		}
		return []string{
			payoff.FormatPayoffTime(s.Months),
			cli.FormatMonth(payoff.DebtFreeDate(now, s.Months)),
			cli.FormatMoney(s.TotalInterest),
			cli.FormatMoney(s.TotalPaid),
		}
	}
	av, sb := cell(c.Avalanche), cell(c.Snowball)
	labels := []string{"Debt free in", "Debt-free date", "Total interest", "Total paid"}
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{l, av[i], sb[i]}
	}
	rows = append(rows, cli.Separator, []string{"First paid off", firstPayoff(c.Avalanche), firstPayoff(c.Snowball)})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AVALANCHE vs SNOWBALL  +%s/mo", cli.FormatMoney(in.Extra))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Avalanche", "Snowball"},
		Rows:    rows,
	}))
	fmt.Println()

	winner, loser := c.Avalanche, c.Snowball
	if best == model.Snowball {
		winner, loser = loser, winner
	}
	switch {
	case winner.WontPayoff:
		fmt.Println("  " + cli.Warn("Neither strategy pays everything off. Add an extra payment."))
	case loser.WontPayoff:
		fmt.Printf("  Recommended: %s (the other never finishes)\n", cli.Good(string(best)))
	case loser.TotalInterest == winner.TotalInterest && loser.Months == winner.Months:
		fmt.Printf("  Both strategies cost the same. Recommended: %s\n", cli.Good(string(best)))
	default:
		fmt.Printf("  Recommended: %s  saves %s and %d months\n",
			cli.Good(string(best)),
			cli.FormatMoney(loser.TotalInterest-winner.TotalInterest),
			loser.Months-winner.Months)
	}
	return nil
}

func firstPayoff(s model.Summary) string {
	if len(s.Payoffs) == 0 {
		return "—"
	}
	return fmt.Sprintf("%s (month %d)", s.Payoffs[0].Name, s.Payoffs[0].Month)
}
