package loan

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/amortize/money"
	"github.com/shopspring/decimal"
)

// Mode selects how a payment is split between interest and capital.
type Mode int

const (
	// CapitalOnly applies the whole payment to principal, up to the balance.
	CapitalOnly Mode = iota + 1
	// InterestOnly records the whole payment as interest.
	InterestOnly
	// FixedInstallment charges the period's interest first and applies the
	// remainder to capital.
	FixedInstallment
)

var modeNames = map[Mode]string{
	CapitalOnly:      "capital",
	InterestOnly:     "interest",
	FixedInstallment: "installment",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the String form of a mode and a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "capital", "capital-only", "principal":
		return CapitalOnly, nil
	case "interest", "interest-only":
		return InterestOnly, nil
	case "installment", "fixed", "fixed-installment":
		return FixedInstallment, nil
	}
	return 0, fmt.Errorf("%w: unknown payment mode %q", ErrInvalidInput, s)
}

// DebtSnapshot is a point-in-time view of a debt used to allocate one payment.
type DebtSnapshot struct {
	OutstandingBalance float64
	PeriodicRate       float64
}

// Allocation is the split of a single payment.
//
// Interest + Capital + Overpayment always equals the payment. Overpayment
// is non-zero only when the capital part would exceed the balance.
type Allocation struct {
	Interest    float64 `json:"interest"`
	Capital     float64 `json:"capital"`
	Overpayment float64 `json:"overpayment,omitempty"`
}

// Allocator splits payments, rounding accrued interest to Places decimals.
type Allocator struct {
	Places int32
}

// AllocatePayment allocates with money.DefaultPlaces.
func AllocatePayment(snap DebtSnapshot, payment float64, mode Mode) (Allocation, error) {
	return Allocator{Places: money.DefaultPlaces}.Allocate(snap, payment, mode)
}

// Allocate splits payment against snap according to mode. A FixedInstallment
// payment that leaves no capital after interest fails with
// ErrInsufficientPayment and produces no allocation.
func (a Allocator) Allocate(snap DebtSnapshot, payment float64, mode Mode) (Allocation, error) {
	if !positive(payment) {
		return Allocation{}, fmt.Errorf("%w: payment must be positive, got %v", ErrInvalidInput, payment)
	}
	if !finite(snap.OutstandingBalance) || snap.OutstandingBalance < 0 {
		return Allocation{}, fmt.Errorf("%w: outstanding balance must be non-negative, got %v", ErrInvalidInput, snap.OutstandingBalance)
	}
	if !finite(snap.PeriodicRate) || snap.PeriodicRate < 0 {
		return Allocation{}, fmt.Errorf("%w: periodic rate must be non-negative, got %v", ErrInvalidInput, snap.PeriodicRate)
	}

	pay := money.Dec(payment)
	balance := money.Dec(snap.OutstandingBalance)

	switch mode {
	case CapitalOnly:
		return split(pay, decimal.Zero, decimal.Min(pay, balance)), nil

	case InterestOnly:
		return split(pay, pay, decimal.Zero), nil

	case FixedInstallment:
		accrued := balance.Mul(money.Dec(snap.PeriodicRate))
		interest := accrued.Round(a.Places)
		capital := pay.Sub(interest)
		if pay.LessThanOrEqual(accrued) || !capital.IsPositive() {
			return Allocation{}, fmt.Errorf("%w: payment %s, interest due %s",
				ErrInsufficientPayment, pay.String(), interest.String())
		}
		return split(pay, interest, decimal.Min(capital, balance)), nil
	}

	return Allocation{}, fmt.Errorf("%w: unknown payment mode %v", ErrInvalidInput, mode)
}

func split(pay, interest, capital decimal.Decimal) Allocation {
	return Allocation{
		Interest:    interest.InexactFloat64(),
		Capital:     capital.InexactFloat64(),
		Overpayment: pay.Sub(interest).Sub(capital).InexactFloat64(),
	}
}
