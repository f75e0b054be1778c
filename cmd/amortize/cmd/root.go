package cmd

import (
	"fmt"

	"github.com/rustyeddy/amortize/config"
	"github.com/rustyeddy/amortize/internal/logging"
	"github.com/rustyeddy/amortize/ledger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "amortize",
	Short: "Loan rate solver, amortization schedules and a small debt ledger",
	Long: `Amortize solves the periodic interest rate implied by a fixed-installment
loan, prints its amortization schedule and splits payments into capital
and interest.

It provides tools for:
  - Solving the periodic rate from principal, installments and installment
  - Generating full or partial amortization schedules
  - Allocating a payment as capital only, interest only or an installment
  - Tracking debts and payments in a local SQLite or CSV ledger`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	rootConfigPath string
	rootDBPath     string
	rootLogLevel   string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "SQLite ledger path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level: debug|info|warn|error")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(rootConfigPath)
	if err != nil {
		return err
	}
	if rootDBPath != "" {
		c.Ledger.Type = "sqlite"
		c.Ledger.DBPath = rootDBPath
	}
	if rootLogLevel != "" {
		c.LogLevel = rootLogLevel
	}
	if err := logging.Setup(c.LogLevel, cmd.ErrOrStderr()); err != nil {
		return err
	}
	cfg = c
	return nil
}

func openStore() (ledger.Store, error) {
	switch cfg.Ledger.Type {
	case "csv":
		s, err := ledger.NewCSV(cfg.Ledger.ExportDir)
		if err != nil {
			return nil, fmt.Errorf("open csv ledger: %w", err)
		}
		return s, nil
	default:
		s, err := ledger.NewSQLite(cfg.Ledger.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return s, nil
	}
}
