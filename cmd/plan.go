package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/daemon"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"

	"github.com/spf13/cobra"
)

var (
	flagPlanSchedule bool
	flagPlanRecord   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the payoff plan for your debts",
	RunE:  runPlan,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, planCmd} {
		c.Flags().BoolVar(&flagPlanSchedule, "schedule", false, "Print the month-by-month schedule")
		c.Flags().BoolVar(&flagPlanRecord, "record", false, "Save this projection to history")
	}
	rootCmd.AddCommand(planCmd)
}

type planOutput struct {
	Summary      model.Summary   `json:"summary"`
	Savings      model.Savings   `json:"savings"`
	PayoffTime   string          `json:"payoff_time,omitempty"`
	DebtFreeDate string          `json:"debt_free_date,omitempty"`
	Schedule     *model.Schedule `json:"schedule,omitempty"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	in, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	if len(in.Debts) == 0 {
		fmt.Println("\n  No debts found.")
		fmt.Println("  Add one with `debtplan debts add` or pass --debts <file>.")
		return nil
	}

	now := time.Now()
	sched := payoff.Simulate(payoff.Plan{
		Debts:        in.Debts,
		ExtraPayment: in.Extra,
		Strategy:     in.Strategy,
		MaxMonths:    in.MaxMonths,
	})
	sum := payoff.Summarize(sched)
	sv := payoff.ComputeSavings(in.Debts, in.Extra, in.Strategy, in.MaxMonths)

	if flagPlanRecord {
		if err := recordProjection(cmd, daemon.ProjectionOf(sched, in.Debts, now)); err != nil {
			return err
		}
	}

	if flagJSON {
		out := newPlanOutput(sum, sv, now)
		if flagPlanSchedule {
			out.Schedule = &sched
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DEBT PAYOFF PLAN  %s  +%s/mo", in.Strategy, cli.FormatMoney(in.Extra))))
	fmt.Println()

	freeIn := payoff.FormatPayoffTime(sum.Months)
	freeOn := cli.FormatMonth(payoff.DebtFreeDate(now, sum.Months))
	if sum.WontPayoff {
		freeIn, freeOn = cli.Bad("never"), "—"
	}
	savedLine := cli.FormatMoney(sv.InterestSaved)
	if sv.MonthsSaved > 0 {
		savedLine += fmt.Sprintf("  (%s sooner)", payoff.FormatPayoffTime(sv.MonthsSaved))
	}
	if sv.BaselineWontPayoff {
		savedLine = cli.Muted("minimums alone never pay off")
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Debts", fmt.Sprintf("%d", len(in.Debts))},
			{"Total balance", cli.FormatMoney(model.TotalBalance(in.Debts))},
			{"Monthly payment", cli.FormatMoney(model.TotalMinimums(in.Debts) + in.Extra)},
			cli.Separator,
			{"Debt free in", freeIn},
			{"Debt-free date", freeOn},
			{"Total interest", cli.FormatMoney(sum.TotalInterest)},
			{"Total paid", cli.FormatMoney(sum.TotalPaid)},
			cli.Separator,
			{"Saved vs minimums", savedLine},
		},
	}))

	if sum.WontPayoff {
		fmt.Println()
		fmt.Println("  " + cli.Warn(stallMessage(sched, in.Debts)))
	}

	if len(sum.Payoffs) > 0 {
		byID := make(map[string]model.Debt, len(in.Debts))
		for _, d := range in.Debts {
			byID[d.ID] = d
		}
		rows := make([][]string, 0, len(sum.Payoffs))
		for i, p := range sum.Payoffs {
			d := byID[p.ID]
			rows = append(rows, []string{
				fmt.Sprintf("%d. %s", i+1, p.Name),
				cli.FormatRate(d.InterestRate),
				cli.FormatMoney(d.Balance),
				fmt.Sprintf("%d", p.Month),
				cli.FormatMonth(payoff.DebtFreeDate(now, p.Month)),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Payoff Order",
			Headers: []string{"Debt", "Rate", "Balance", "Month", "Paid Off"},
			Rows:    rows,
		}))
	}

	if n := sched.Len(); n > 1 {
		values := make([]float64, n)
		for i, m := range sched.Months {
			values[i] = m.TotalRemaining
		}
		fmt.Println()
		fmt.Printf("  Balance  %s\n", cli.RenderSparkline(cli.Downsample(values, 60)))
	}

	if flagPlanSchedule {
		fmt.Println()
		fmt.Print(renderSchedule(sched, now))
	}
	return nil
}

// newPlanOutput leaves the payoff time and date empty when the plan never
// finishes.
func newPlanOutput(sum model.Summary, sv model.Savings, now time.Time) planOutput {
	out := planOutput{Summary: sum, Savings: sv}
	if !sum.WontPayoff {
		out.PayoffTime = payoff.FormatPayoffTime(sum.Months)
		out.DebtFreeDate = payoff.DebtFreeDate(now, sum.Months).Format("2006-01")
	}
	return out
}

func renderSchedule(sched model.Schedule, now time.Time) string {
	rows := make([][]string, 0, sched.Len())
	for _, m := range sched.Months {
		rows = append(rows, []string{
			fmt.Sprintf("%d", m.MonthIndex),
			cli.FormatMonth(payoff.DebtFreeDate(now, m.MonthIndex)),
			cli.FormatMoney(m.TotalPaid),
			cli.FormatMoney(m.InterestThisMonth),
			cli.FormatMoney(m.CumulativeInterest),
			cli.FormatMoney(m.TotalRemaining),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Schedule",
		Headers: []string{"Month", "Date", "Paid", "Interest", "Total Interest", "Remaining"},
		Rows:    rows,
	})
}

func stallMessage(sched model.Schedule, debts []model.Debt) string {
	if len(sched.StalledDebtIDs) == 0 {
		return fmt.Sprintf("Still owing after %s. Add an extra payment to finish.", payoff.FormatPayoffTime(sched.Len()))
	}
	names := make(map[string]string, len(debts))
	for _, d := range debts {
		names[d.ID] = d.Label()
	}
	stalled := make([]string, len(sched.StalledDebtIDs))
	for i, id := range sched.StalledDebtIDs {
		stalled[i] = names[id]
	}
	return "Payments never get ahead of interest on: " + strings.Join(stalled, ", ")
}

func recordProjection(cmd *cobra.Command, p model.Projection) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.RecordProjection(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("recording projection: %w", err)
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Recorded projection #%d\n", id)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
