package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/zoonmattau/budgeter-sub000/internal/cli"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/source"
	"github.com/zoonmattau/budgeter-sub000/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDebtID          string
	flagDebtName        string
	flagDebtInstitution string
	flagDebtType        string
	flagDebtBalance     float64
	flagDebtRate        float64
	flagDebtMinimum     float64
	flagDebtOriginal    float64
	flagImportAppend    bool
	flagExportFormat    string
)

var debtsCmd = &cobra.Command{
	Use:   "debts",
	Short: "Manage the debts stored in the local database",
	RunE:  runDebtsList,
}

var debtsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List debts",
	RunE:  runDebtsList,
}

var debtsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a debt, or update it when --id already exists",
	Example: `  debtplan debts add --name "Visa" --balance 4200 --rate 24.99 --min 120
  debtplan debts add --id visa --balance 3900`,
	RunE: runDebtsAdd,
}

var debtsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a debt",
	Args:    cobra.ExactArgs(1),
	RunE:    runDebtsRm,
}

var debtsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load debts from a TOML, JSON or YAML file into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtsImport,
}

var debtsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored debts to stdout as TOML, JSON or YAML",
	RunE:  runDebtsExport,
}

func init() {
	f := debtsAddCmd.Flags()
	f.StringVar(&flagDebtID, "id", "", "Debt ID (generated when empty)")
	f.StringVar(&flagDebtName, "name", "", "Display name")
	f.StringVar(&flagDebtInstitution, "institution", "", "Lender")
	f.StringVar(&flagDebtType, "type", "", "Kind of debt, e.g. credit_card")
	f.Float64Var(&flagDebtBalance, "balance", 0, "Current balance")
	f.Float64Var(&flagDebtRate, "rate", 0, "Annual interest rate in percent")
	f.Float64Var(&flagDebtMinimum, "min", 0, "Minimum monthly payment")
	f.Float64Var(&flagDebtOriginal, "original", 0, "Original amount borrowed")

	debtsImportCmd.Flags().BoolVar(&flagImportAppend, "append", false, "Keep existing debts and upsert these")
	debtsExportCmd.Flags().StringVar(&flagExportFormat, "format", "toml", "Output format: toml, json or yaml")

	debtsCmd.AddCommand(debtsListCmd, debtsAddCmd, debtsRmCmd, debtsImportCmd, debtsExportCmd)
	rootCmd.AddCommand(debtsCmd)
}

func runDebtsList(cmd *cobra.Command, _ []string) error {
	debts, src, _, err := loadDebts(cmd.Context())
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(debts)
	}
	if len(debts) == 0 {
		fmt.Println("\n  No debts yet. Add one with `debtplan debts add`.")
		return nil
	}

	rows := make([][]string, 0, len(debts)+2)
	for _, d := range debts {
		paid := "—"
		if d.OriginalAmount > 0 {
			paid = cli.FormatPercent(d.PaidOffFraction())
		}
		rows = append(rows, []string{
			d.Label(),
			d.ID,
			d.Institution,
			cli.FormatRate(d.InterestRate),
			cli.FormatMoney(d.MinimumPayment),
			cli.FormatMoney(d.Balance),
			paid,
		})
	}
	rows = append(rows, cli.Separator, []string{
		fmt.Sprintf("%d debts", len(debts)), "", "", "",
		cli.FormatMoney(model.TotalMinimums(debts)),
		cli.FormatMoney(model.TotalBalance(debts)),
		"",
	})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Debts · " + src,
		Headers: []string{"Name", "ID", "Institution", "Rate", "Minimum", "Balance", "Repaid"},
		Rows:    rows,
	}))
	return nil
}

func runDebtsAdd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := cmd.Context()

	d := model.Debt{ID: flagDebtID}
	isNew := true
	if d.ID != "" {
		existing, err := st.GetDebt(ctx, d.ID)
		switch {
		case err == nil:
			d, isNew = existing, false
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}

	f := cmd.Flags()
	if isNew && (!f.Changed("name") || !f.Changed("balance")) {
		return errors.New("a new debt needs at least --name and --balance")
	}
	if f.Changed("name") {
		d.Name = flagDebtName
	}
	if f.Changed("institution") {
		d.Institution = flagDebtInstitution
	}
	if f.Changed("type") {
		d.Type = flagDebtType
	}
	if f.Changed("balance") {
		d.Balance = flagDebtBalance
	}
	if f.Changed("rate") {
		d.InterestRate = flagDebtRate
	}
	if f.Changed("min") {
		d.MinimumPayment = flagDebtMinimum
	}
	if f.Changed("original") {
		d.OriginalAmount = flagDebtOriginal
	}
	if isNew && d.OriginalAmount == 0 {
		d.OriginalAmount = d.Balance
	}

	one := []model.Debt{d}
	if err := source.Normalize(one); err != nil {
		return err
	}
	if err := st.SaveDebt(ctx, one[0]); err != nil {
		return err
	}
	fmt.Printf("  Saved %s (%s)\n", one[0].Label(), one[0].ID)
	return nil
}

func runDebtsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteDebt(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Removed %s\n", args[0])
	return nil
}

func runDebtsImport(cmd *cobra.Command, args []string) error {
	doc, err := source.Load(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := cmd.Context()

	if flagImportAppend {
		for _, d := range doc.Debts {
			if err := st.SaveDebt(ctx, d); err != nil {
				return err
			}
		}
	} else if err := st.ReplaceDebts(ctx, doc.Debts); err != nil {
		return err
	}
	fmt.Printf("  Imported %d debts from %s\n", len(doc.Debts), args[0])
	return nil
}

func runDebtsExport(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	debts, err := st.ListDebts(cmd.Context())
	if err != nil {
		return err
	}
	doc := source.Document{
		Strategy:     appCfg.General.DefaultStrategy,
		ExtraPayment: appCfg.General.ExtraPayment,
		Debts:        debts,
	}
	data, err := source.Encode(doc, source.Format(flagExportFormat))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
