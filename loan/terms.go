// Package loan implements the amortization engine: solving the periodic
// rate implied by fixed installments, generating schedules and allocating
// payments between interest and capital.
//
// Rates are fractions of one per payment period (0.0123, not 1.23). Use
// ToPercent and FromPercent at the presentation boundary.
package loan

import (
	"fmt"
	"math"
)

// Terms are the known, fixed terms of an installment loan whose rate may
// be unknown.
type Terms struct {
	Principal    float64 `json:"principal" yaml:"principal"`
	Installments int     `json:"installments" yaml:"installments"`
	Installment  float64 `json:"installment" yaml:"installment"`
}

// Validate checks the preconditions shared by the solver and the schedule
// generator.
func (t Terms) Validate() error {
	if !positive(t.Principal) {
		return fmt.Errorf("%w: principal must be positive, got %v", ErrInvalidInput, t.Principal)
	}
	if t.Installments <= 0 {
		return fmt.Errorf("%w: installment count must be positive, got %d", ErrInvalidInput, t.Installments)
	}
	if !positive(t.Installment) {
		return fmt.Errorf("%w: installment amount must be positive, got %v", ErrInvalidInput, t.Installment)
	}
	return nil
}

// TotalPaid is the sum of all installments.
func (t Terms) TotalPaid() float64 {
	return t.Installment * float64(t.Installments)
}

// ToPercent converts a fraction-of-one rate to a percentage.
func ToPercent(rate float64) float64 {
	return rate * 100
}

// FromPercent converts a percentage to a fraction-of-one rate.
func FromPercent(pct float64) float64 {
	return pct / 100
}

// PeriodicFromAnnual converts a nominal annual percentage into the
// fraction-of-one rate per period, e.g. 12% with 12 periods per year is 0.01.
func PeriodicFromAnnual(annualPct float64, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidInput, periodsPerYear)
	}
	if !finite(annualPct) || annualPct < 0 {
		return 0, fmt.Errorf("%w: annual rate must be non-negative, got %v", ErrInvalidInput, annualPct)
	}
	return FromPercent(annualPct) / float64(periodsPerYear), nil
}

// Payment returns the fixed installment that amortizes principal over n
// periods at rate. At a zero rate it is principal/n.
func Payment(principal, rate float64, n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	if rate == 0 {
		return principal / float64(n)
	}
	pow := math.Pow(1+rate, float64(n))
	return principal * rate * pow / (pow - 1)
}

// BalanceAfter returns the closed-form remaining balance after k
// installments of the given amount.
func BalanceAfter(principal, rate, installment float64, k int) float64 {
	if rate == 0 {
		return principal - installment*float64(k)
	}
	pow := math.Pow(1+rate, float64(k))
	return principal*pow - installment*(pow-1)/rate
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func positive(x float64) bool {
	return finite(x) && x > 0
}
