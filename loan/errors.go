package loan

import "errors"

var (
	// ErrInvalidInput reports a non-positive principal, installment count or
	// installment amount, or a rate/balance outside its domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence reports that the rate solver could not find a finite
	// root within its iteration budget. The rate is undetermined, not zero.
	ErrNoConvergence = errors.New("rate did not converge")

	// ErrInsufficientPayment reports a fixed-installment payment that does
	// not cover the interest accrued for the period.
	ErrInsufficientPayment = errors.New("payment does not cover accrued interest")
)
