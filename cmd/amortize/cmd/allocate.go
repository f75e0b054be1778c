package cmd

import (
	"fmt"

	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/money"
	"github.com/spf13/cobra"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split a payment into interest and capital",
	Long: `Allocate a single payment against an outstanding balance.

Modes:
  capital      - the whole payment reduces the balance
  interest     - the whole payment covers interest
  installment  - interest for one period is taken first, the rest is capital

Example:
  amortize allocate --balance 15000000 --rate 3.7031 --payment 761000 --mode installment`,
	Args: cobra.NoArgs,
	RunE: runAllocate,
}

var (
	allocateBalance float64
	allocateRatePct float64
	allocatePayment float64
	allocateMode    string
)

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().Float64VarP(&allocateBalance, "balance", "b", 0, "outstanding balance")
	allocateCmd.Flags().Float64VarP(&allocateRatePct, "rate", "r", 0, "periodic rate in percent")
	allocateCmd.Flags().Float64VarP(&allocatePayment, "payment", "x", 0, "payment amount")
	allocateCmd.Flags().StringVarP(&allocateMode, "mode", "m", "installment", "capital|interest|installment")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	mode, err := loan.ParseMode(allocateMode)
	if err != nil {
		return err
	}

	snap := loan.DebtSnapshot{
		OutstandingBalance: allocateBalance,
		PeriodicRate:       loan.FromPercent(allocateRatePct),
	}
	a, err := cfg.Allocator().Allocate(snap, allocatePayment, mode)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	places := cfg.Currency.Places
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode:        %s\n", mode)
	fmt.Fprintf(out, "Interest:    %s\n", money.Format(a.Interest, places))
	fmt.Fprintf(out, "Capital:     %s\n", money.Format(a.Capital, places))
	if a.Overpayment > 0 {
		fmt.Fprintf(out, "Overpayment: %s\n", money.Format(a.Overpayment, places))
	}
	fmt.Fprintf(out, "Balance:     %s\n", money.Format(allocateBalance-a.Capital, places))
	return nil
}
