package cmd

import (
	"fmt"

	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/report"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Solve the periodic interest rate of a loan",
	Long: `Solve the periodic rate r for which an installment pays off the
principal in exactly the given number of periods.

When installment x installments does not exceed the principal the rate
is 0.

Example:
  amortize rate --principal 15000000 --installments 36 --installment 761000`,
	Args: cobra.NoArgs,
	RunE: runRate,
}

var rateTerms loan.Terms

func init() {
	rootCmd.AddCommand(rateCmd)
	termsFlags(rateCmd, &rateTerms)
}

// termsFlags registers the three loan parameters on c.
func termsFlags(c *cobra.Command, t *loan.Terms) {
	c.Flags().Float64VarP(&t.Principal, "principal", "p", 0, "amount borrowed")
	c.Flags().IntVarP(&t.Installments, "installments", "n", 0, "number of installments")
	c.Flags().Float64VarP(&t.Installment, "installment", "a", 0, "fixed installment amount")
}

func runRate(cmd *cobra.Command, args []string) error {
	rate, err := cfg.SolverSettings().Solve(rateTerms.Principal, rateTerms.Installments, rateTerms.Installment)
	if err != nil {
		return fmt.Errorf("solve rate: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Periodic rate: %.12f (%s)\n", rate, report.FormatRate(rate))
	fmt.Fprintf(out, "Total paid:    %.2f\n", rateTerms.TotalPaid())
	return nil
}
