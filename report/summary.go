// Package report turns engine output into summaries and printable tables.
// All rounding for display happens here.
package report

import (
	"fmt"

	"github.com/rustyeddy/amortize/loan"
)

// Summary is the state of a loan after the first Through payments.
type Summary struct {
	Through       int
	CapitalPaid   float64
	InterestPaid  float64
	TotalPaid     float64
	RemainingDebt float64
}

// Summarize totals rows 1..through. RemainingDebt is the principal
// (reconstructed from the first row) minus the capital paid.
func Summarize(rows []loan.Row, through int) (Summary, error) {
	if through < 1 || through > len(rows) {
		return Summary{}, fmt.Errorf("%w: through must be between 1 and %d, got %d", loan.ErrInvalidInput, len(rows), through)
	}

	s := Summary{Through: through}
	for _, r := range rows[:through] {
		s.CapitalPaid += r.Capital
		s.InterestPaid += r.Interest
		s.TotalPaid += r.Payment
	}
	principal := rows[0].Balance + rows[0].Capital
	s.RemainingDebt = principal - s.CapitalPaid
	return s, nil
}

// NegativeAmortization returns the first period whose capital portion is
// negative, or 0 when the balance never grows.
func NegativeAmortization(rows []loan.Row) int {
	for _, r := range rows {
		if r.Capital < 0 {
			return r.Period
		}
	}
	return 0
}

// Totals sums interest and capital across all rows.
func Totals(rows []loan.Row) (interest, capital float64) {
	for _, r := range rows {
		interest += r.Interest
		capital += r.Capital
	}
	return interest, capital
}
