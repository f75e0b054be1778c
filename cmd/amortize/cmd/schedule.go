package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rustyeddy/amortize/ledger"
	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/report"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the amortization schedule of a loan",
	Long: `Print one row per installment with the interest, capital and remaining
balance. The rate is solved from the loan terms unless --rate is given.

Examples:
  amortize schedule -p 15000000 -n 36 -a 761000
  amortize schedule -p 15000000 -n 36 -a 761000 --through 15
  amortize schedule -p 1000 -n 12 -a 90 --rate 1.5 --format csv -o plan.csv`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var (
	scheduleTerms   loan.Terms
	scheduleRatePct float64
	scheduleOpts    scheduleOutput
)

// scheduleOutput holds the presentation flags shared by schedule and
// debt schedule.
type scheduleOutput struct {
	Through int
	Format  string
	Output  string
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	termsFlags(scheduleCmd, &scheduleTerms)
	scheduleCmd.Flags().Float64VarP(&scheduleRatePct, "rate", "r", 0, "periodic rate in percent (solved when omitted)")
	scheduleOutputFlags(scheduleCmd, &scheduleOpts)
}

func scheduleOutputFlags(c *cobra.Command, o *scheduleOutput) {
	c.Flags().IntVarP(&o.Through, "through", "k", 0, "also summarize the first K payments")
	c.Flags().StringVarP(&o.Format, "format", "f", "table", "output format: table|org|csv")
	c.Flags().StringVarP(&o.Output, "output", "o", "", "write to file instead of stdout")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if err := scheduleTerms.Validate(); err != nil {
		return err
	}

	var rate float64
	if cmd.Flags().Changed("rate") {
		rate = loan.FromPercent(scheduleRatePct)
	} else {
		r, err := cfg.SolverSettings().Solve(scheduleTerms.Principal, scheduleTerms.Installments, scheduleTerms.Installment)
		if err != nil {
			return fmt.Errorf("solve rate: %w", err)
		}
		rate = r
	}

	rows, err := loan.GenerateSchedule(scheduleTerms.Principal, rate, scheduleTerms.Installments, scheduleTerms.Installment)
	if err != nil {
		return fmt.Errorf("generate schedule: %w", err)
	}
	return writeSchedule(cmd.OutOrStdout(), rate, rows, scheduleOpts)
}

func writeSchedule(stdout io.Writer, rate float64, rows []loan.Row, o scheduleOutput) error {
	switch o.Format {
	case "table", "org", "csv":
	default:
		return fmt.Errorf("unknown format %q (want table, org or csv)", o.Format)
	}

	if p := report.NegativeAmortization(rows); p > 0 {
		log.WithField("period", p).Warn("installment does not cover interest, balance grows")
	}

	var summary *report.Summary
	if o.Through > 0 {
		s, err := report.Summarize(rows, o.Through)
		if err != nil {
			return err
		}
		summary = &s
	}

	w := stdout
	if o.Output != "" {
		f, err := os.Create(o.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	places := cfg.Currency.Places
	switch o.Format {
	case "csv":
		if err := ledger.WriteScheduleCSV(w, rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		// CSV stays machine readable; the summary goes to stdout only.
		if summary != nil && o.Output != "" {
			fmt.Fprint(stdout, report.FormatSummary(*summary, places))
		}
		return nil
	case "org":
		fmt.Fprintf(w, "Periodic rate: %s\n\n", report.FormatRate(rate))
		fmt.Fprint(w, report.FormatScheduleOrg(rows, places))
	default:
		fmt.Fprintf(w, "Periodic rate: %s\n\n", report.FormatRate(rate))
		fmt.Fprint(w, report.FormatScheduleTable(rows, places))
	}

	if summary != nil {
		fmt.Fprintln(w)
		fmt.Fprint(w, report.FormatSummary(*summary, places))
	}
	return nil
}
