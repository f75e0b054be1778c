package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/amortize/ledger"
	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/money"
	"github.com/rustyeddy/amortize/pkg/id"
	"github.com/rustyeddy/amortize/report"
	"github.com/spf13/cobra"
)

var debtCmd = &cobra.Command{
	Use:   "debt",
	Short: "Track debts and payments in the local ledger",
	Long: `Record debts, apply payments and inspect their schedules.

Subcommands:
  add       - Register a new debt
  list      - List all debts
  show      - Show a debt and its payments
  pay       - Apply a payment to a debt
  payments  - List the payments of a debt
  schedule  - Print the amortization schedule of an installment debt
  delete    - Remove a debt and its payments

Examples:
  amortize debt add -d "Car loan" --total 15000000 -n 36 -a 761000
  amortize debt pay 01JC3Q5 --amount 761000
  amortize debt schedule 01JC3Q5 --through 15`,
}

var debtAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new debt",
	Args:  cobra.NoArgs,
	RunE:  runDebtAdd,
}

var debtListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all debts",
	Args:  cobra.NoArgs,
	RunE:  runDebtList,
}

var debtShowCmd = &cobra.Command{
	Use:   "show <debt-id>",
	Short: "Show a debt and its payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtShow,
}

var debtPayCmd = &cobra.Command{
	Use:   "pay <debt-id>",
	Short: "Apply a payment to a debt",
	Long: `Allocate a payment against the debt's outstanding balance and record it.

Without --mode, interest-only debts take interest payments, installment
debts take fixed installments and everything else is paid to capital.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebtPay,
}

var debtPaymentsCmd = &cobra.Command{
	Use:   "payments <debt-id>",
	Short: "List the payments of a debt",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtPayments,
}

var debtScheduleCmd = &cobra.Command{
	Use:   "schedule <debt-id>",
	Short: "Print the amortization schedule of an installment debt",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtSchedule,
}

var debtDeleteCmd = &cobra.Command{
	Use:   "delete <debt-id>",
	Short: "Remove a debt and its payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebtDelete,
}

var (
	debtAdd struct {
		Description  string
		Creditor     string
		Total        float64
		Paid         float64
		RatePct      float64
		InterestOnly bool
		Installments int
		Installment  float64
		Start        string
		Due          string
	}

	debtPayAmount float64
	debtPayMode   string
	debtPayDate   string

	debtPaymentsFormat string
	debtScheduleOpts   scheduleOutput
)

func init() {
	rootCmd.AddCommand(debtCmd)
	debtCmd.AddCommand(debtAddCmd, debtListCmd, debtShowCmd, debtPayCmd,
		debtPaymentsCmd, debtScheduleCmd, debtDeleteCmd)

	f := debtAddCmd.Flags()
	f.StringVarP(&debtAdd.Description, "description", "d", "", "what the debt is for (required)")
	f.StringVarP(&debtAdd.Creditor, "creditor", "c", "", "who is owed")
	f.Float64Var(&debtAdd.Total, "total", 0, "total amount owed (required)")
	f.Float64Var(&debtAdd.Paid, "paid", 0, "amount already paid")
	f.Float64VarP(&debtAdd.RatePct, "rate", "r", 0, "periodic rate in percent (solved from installments when omitted)")
	f.BoolVar(&debtAdd.InterestOnly, "interest-only", false, "payments only cover interest")
	f.IntVarP(&debtAdd.Installments, "installments", "n", 0, "number of installments")
	f.Float64VarP(&debtAdd.Installment, "installment", "a", 0, "fixed installment amount")
	f.StringVar(&debtAdd.Start, "start", "", "start date YYYY-MM-DD")
	f.StringVar(&debtAdd.Due, "due", "", "due date YYYY-MM-DD")
	debtAddCmd.MarkFlagRequired("description")
	debtAddCmd.MarkFlagRequired("total")

	debtPayCmd.Flags().Float64VarP(&debtPayAmount, "amount", "x", 0, "payment amount (required)")
	debtPayCmd.Flags().StringVarP(&debtPayMode, "mode", "m", "", "capital|interest|installment (default depends on the debt)")
	debtPayCmd.Flags().StringVar(&debtPayDate, "date", "", "payment date YYYY-MM-DD (default now)")
	debtPayCmd.MarkFlagRequired("amount")

	debtPaymentsCmd.Flags().StringVarP(&debtPaymentsFormat, "format", "f", "table", "output format: table|csv")

	scheduleOutputFlags(debtScheduleCmd, &debtScheduleOpts)
}

func runDebtAdd(cmd *cobra.Command, args []string) error {
	start, err := parseDay(debtAdd.Start)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	due, err := parseDay(debtAdd.Due)
	if err != nil {
		return fmt.Errorf("due date: %w", err)
	}

	d := ledger.Debt{
		Description:       debtAdd.Description,
		Creditor:          debtAdd.Creditor,
		TotalAmount:       debtAdd.Total,
		PaidAmount:        debtAdd.Paid,
		InterestOnly:      debtAdd.InterestOnly,
		Installments:      debtAdd.Installments,
		InstallmentAmount: debtAdd.Installment,
		StartDate:         start,
		DueDate:           due,
	}
	if cmd.Flags().Changed("rate") {
		d.PeriodicRate = loan.FromPercent(debtAdd.RatePct)
		d.HasRate = true
	}

	d, err = ledger.NewDebt(d, cfg.SolverSettings(), time.Now())
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AddDebt(cmd.Context(), d); err != nil {
		return fmt.Errorf("add debt: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added debt %s (%s)\n", d.ID, d.Description)
	if d.HasRate {
		fmt.Fprintf(out, "  Rate: %s per period\n", report.FormatRate(d.PeriodicRate))
	} else if d.HasInstallments() {
		fmt.Fprintln(out, "  Rate: undetermined")
	}
	return nil
}

func runDebtList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	debts, err := s.ListDebts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}

	places := cfg.Currency.Places
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION\tTOTAL\tOUTSTANDING\tPROGRESS\tRATE")
	for _, d := range debts {
		rate := "-"
		if d.HasRate {
			rate = report.FormatRate(d.PeriodicRate)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
			id.Short(d.ID),
			d.Description,
			money.Format(d.TotalAmount, places),
			money.Format(d.Outstanding(), places),
			d.Progress(),
			rate,
		)
	}
	return tw.Flush()
}

func runDebtShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.GetDebt(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get debt: %w", err)
	}
	payments, err := s.ListPayments(cmd.Context(), d.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	out, err := report.FormatDebtOrg(report.DebtView{
		Debt:     d,
		Payments: payments,
		Currency: cfg.Currency.Code,
		Places:   cfg.Currency.Places,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runDebtPay(cmd *cobra.Command, args []string) error {
	var mode loan.Mode
	if debtPayMode != "" {
		m, err := loan.ParseMode(debtPayMode)
		if err != nil {
			return err
		}
		mode = m
	}

	when := time.Now()
	if debtPayDate != "" {
		t, err := parseDay(debtPayDate)
		if err != nil {
			return fmt.Errorf("payment date: %w", err)
		}
		when = t
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := ledger.ApplyPayment(cmd.Context(), s, cfg.Allocator(), args[0], debtPayAmount, mode, when)
	if err != nil {
		return err
	}
	d, err := s.GetDebt(cmd.Context(), p.DebtID)
	if err != nil {
		return fmt.Errorf("get debt: %w", err)
	}

	places := cfg.Currency.Places
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Payment %s recorded (%s)\n", id.Short(p.ID), p.Mode)
	fmt.Fprintf(out, "  Interest:    %s\n", money.Format(p.Interest, places))
	fmt.Fprintf(out, "  Capital:     %s\n", money.Format(p.Capital, places))
	if p.Overpayment > 0 {
		fmt.Fprintf(out, "  Overpayment: %s\n", money.Format(p.Overpayment, places))
	}
	fmt.Fprintf(out, "  Outstanding: %s\n", money.Format(d.Outstanding(), places))
	return nil
}

func runDebtPayments(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.GetDebt(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get debt: %w", err)
	}
	payments, err := s.ListPayments(cmd.Context(), d.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	out := cmd.OutOrStdout()
	switch debtPaymentsFormat {
	case "csv":
		return ledger.WritePaymentsCSV(out, payments)
	case "table":
	default:
		return fmt.Errorf("unknown format %q (want table or csv)", debtPaymentsFormat)
	}

	places := cfg.Currency.Places
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMODE\tAMOUNT\tINTEREST\tCAPITAL")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Time.Format("2006-01-02"),
			p.Mode,
			money.Format(p.Amount, places),
			money.Format(p.Interest, places),
			money.Format(p.Capital, places),
		)
	}
	interest, capital := ledger.Totals(payments)
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t%s\n",
		money.Format(interest+capital, places),
		money.Format(interest, places),
		money.Format(capital, places),
	)
	return tw.Flush()
}

func runDebtSchedule(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.GetDebt(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get debt: %w", err)
	}
	rows, err := d.Schedule()
	if err != nil {
		return err
	}
	return writeSchedule(cmd.OutOrStdout(), d.PeriodicRate, rows, debtScheduleOpts)
}

func runDebtDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteDebt(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted debt %s\n", args[0])
	return nil
}

// parseDay parses YYYY-MM-DD as a UTC date. Empty input is the zero time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
