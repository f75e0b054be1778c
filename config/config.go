package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/amortize/internal/logging"
	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/money"
	"gopkg.in/yaml.v3"
)

// Config is the complete amortize configuration.
type Config struct {
	Solver   SolverConfig   `json:"solver" yaml:"solver"`
	Currency CurrencyConfig `json:"currency" yaml:"currency"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
	LogLevel string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// SolverConfig holds the Newton-Raphson tunables.
type SolverConfig struct {
	InitialGuess  float64 `json:"initial_guess" yaml:"initial_guess"`
	Step          float64 `json:"step" yaml:"step"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
}

// CurrencyConfig controls rounding and display of amounts.
type CurrencyConfig struct {
	Code   string `json:"code" yaml:"code"`
	Places int32  `json:"places" yaml:"places"`
}

// LedgerConfig selects where debts are stored and where exports go.
type LedgerConfig struct {
	Type      string `json:"type" yaml:"type"` // "sqlite" or "csv"
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	ExportDir string `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`
}

// Environment variables that override file settings.
const (
	EnvDBPath   = "AMORTIZE_DB_PATH"
	EnvCurrency = "AMORTIZE_CURRENCY"
	EnvPlaces   = "AMORTIZE_PLACES"
	EnvLogLevel = "AMORTIZE_LOG_LEVEL"
)

// LoadFromFile loads configuration from a file, trying YAML then JSON.
// Keys missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads path when it is non-empty (Default otherwise), then applies
// .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Ledger.DBPath = v
	}
	if v, ok := lookup(EnvCurrency); ok && v != "" {
		c.Currency.Code = strings.ToUpper(v)
	}
	if v, ok := lookup(EnvPlaces); ok && v != "" {
		p, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPlaces, err)
		}
		c.Currency.Places = int32(p)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.SolverSettings().Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if c.Currency.Code == "" {
		return fmt.Errorf("currency.code is required")
	}
	if c.Currency.Places < 0 || c.Currency.Places > money.MaxPlaces {
		return fmt.Errorf("currency.places must be between 0 and %d", money.MaxPlaces)
	}
	if c.Ledger.Type != "sqlite" && c.Ledger.Type != "csv" {
		return fmt.Errorf("ledger.type must be 'sqlite' or 'csv'")
	}
	if c.Ledger.Type == "sqlite" && c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger db_path required for SQLite type")
	}
	if c.Ledger.Type == "csv" && c.Ledger.ExportDir == "" {
		return fmt.Errorf("ledger export_dir required for CSV type")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SolverSettings returns the configured loan.Solver.
func (c *Config) SolverSettings() loan.Solver {
	return loan.Solver{
		InitialGuess:  c.Solver.InitialGuess,
		Step:          c.Solver.Step,
		MaxIterations: c.Solver.MaxIterations,
		Tolerance:     c.Solver.Tolerance,
	}
}

// Allocator returns a loan.Allocator rounding to the configured places.
func (c *Config) Allocator() loan.Allocator {
	return loan.Allocator{Places: c.Currency.Places}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			InitialGuess:  loan.DefaultInitialGuess,
			Step:          loan.DefaultStep,
			MaxIterations: loan.DefaultMaxIterations,
			Tolerance:     loan.DefaultTolerance,
		},
		Currency: CurrencyConfig{
			Code:   "USD",
			Places: money.DefaultPlaces,
		},
		Ledger: LedgerConfig{
			Type:      "sqlite",
			DBPath:    "./amortize.sqlite",
			ExportDir: "./export",
		},
		LogLevel: "info",
	}
}
