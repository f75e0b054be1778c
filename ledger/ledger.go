// Package ledger stores debts and the payments made against them, and
// applies new payments through the loan allocator.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/pkg/id"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when a debt ID does not exist.
	ErrNotFound = errors.New("debt not found")

	// ErrRateUnknown is returned when an operation needs the periodic rate
	// of a debt whose rate was never given and could not be solved.
	ErrRateUnknown = errors.New("debt rate is undetermined")
)

// Debt is a stored obligation. PeriodicRate is a fraction of one and is
// only meaningful when HasRate is set.
type Debt struct {
	ID                string
	Description       string
	Creditor          string
	TotalAmount       float64
	PaidAmount        float64
	PeriodicRate      float64
	HasRate           bool
	InterestOnly      bool
	Installments      int
	InstallmentAmount float64
	StartDate         time.Time
	DueDate           time.Time
	CreatedAt         time.Time
}

// Payment is one recorded payment and its allocation.
type Payment struct {
	ID          string
	DebtID      string
	Time        time.Time
	Amount      float64
	Mode        loan.Mode
	Interest    float64
	Capital     float64
	Overpayment float64
}

// Store persists debts and payments.
type Store interface {
	AddDebt(ctx context.Context, d Debt) error
	GetDebt(ctx context.Context, debtID string) (Debt, error)
	ListDebts(ctx context.Context) ([]Debt, error)
	DeleteDebt(ctx context.Context, debtID string) error

	// RecordPayment stores p and adds p.Capital to the debt's paid amount
	// atomically.
	RecordPayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, debtID string) ([]Payment, error)

	Close() error
}

// Outstanding is the capital still owed.
func (d Debt) Outstanding() float64 {
	return math.Max(0, d.TotalAmount-d.PaidAmount)
}

// Progress is the paid share of the debt as a percentage, capped at 100.
func (d Debt) Progress() float64 {
	if d.TotalAmount <= 0 {
		return 0
	}
	return math.Min(100, d.PaidAmount/d.TotalAmount*100)
}

// HasInstallments reports whether the debt has fixed installment terms.
func (d Debt) HasInstallments() bool {
	return d.Installments > 0 && d.InstallmentAmount > 0
}

// Terms returns the fixed installment terms of the debt.
func (d Debt) Terms() loan.Terms {
	return loan.Terms{
		Principal:    d.TotalAmount,
		Installments: d.Installments,
		Installment:  d.InstallmentAmount,
	}
}

// Snapshot is the debt as seen by the allocator. An unknown rate is
// reported as zero, which only the FixedInstallment mode would use.
func (d Debt) Snapshot() loan.DebtSnapshot {
	rate := 0.0
	if d.HasRate {
		rate = d.PeriodicRate
	}
	return loan.DebtSnapshot{OutstandingBalance: d.Outstanding(), PeriodicRate: rate}
}

// DefaultMode is the payment mode used when the caller does not pick one.
func (d Debt) DefaultMode() loan.Mode {
	switch {
	case d.InterestOnly:
		return loan.InterestOnly
	case d.HasInstallments():
		return loan.FixedInstallment
	default:
		return loan.CapitalOnly
	}
}

// Schedule generates the amortization schedule of an installment debt
// from its original terms.
func (d Debt) Schedule() ([]loan.Row, error) {
	if !d.HasInstallments() {
		return nil, fmt.Errorf("debt %s has no installment terms: %w", d.ID, loan.ErrInvalidInput)
	}
	if !d.HasRate {
		return nil, fmt.Errorf("debt %s: %w", d.ID, ErrRateUnknown)
	}
	return loan.GenerateSchedule(d.TotalAmount, d.PeriodicRate, d.Installments, d.InstallmentAmount)
}

// NewDebt validates d, assigns an ID and creation time and, for installment
// debts without a stated rate, solves the rate with s. A rate that does not
// converge leaves HasRate unset rather than storing zero.
func NewDebt(d Debt, s loan.Solver, now time.Time) (Debt, error) {
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return Debt{}, fmt.Errorf("%w: description is required", loan.ErrInvalidInput)
	}
	if d.TotalAmount <= 0 || math.IsNaN(d.TotalAmount) || math.IsInf(d.TotalAmount, 0) {
		return Debt{}, fmt.Errorf("%w: total amount must be positive, got %v", loan.ErrInvalidInput, d.TotalAmount)
	}
	if d.PaidAmount < 0 || d.PaidAmount > d.TotalAmount {
		return Debt{}, fmt.Errorf("%w: paid amount must be between 0 and the total, got %v", loan.ErrInvalidInput, d.PaidAmount)
	}
	if d.HasRate && (d.PeriodicRate < 0 || math.IsNaN(d.PeriodicRate) || math.IsInf(d.PeriodicRate, 0)) {
		return Debt{}, fmt.Errorf("%w: periodic rate must be non-negative, got %v", loan.ErrInvalidInput, d.PeriodicRate)
	}
	if d.Installments < 0 || d.InstallmentAmount < 0 {
		return Debt{}, fmt.Errorf("%w: installment terms must not be negative", loan.ErrInvalidInput)
	}
	if (d.Installments > 0) != (d.InstallmentAmount > 0) {
		return Debt{}, fmt.Errorf("%w: installment count and amount must be given together", loan.ErrInvalidInput)
	}

	if d.ID == "" {
		d.ID = id.At(now)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now.UTC()
	}

	if !d.HasRate && d.HasInstallments() {
		rate, err := s.Solve(d.TotalAmount, d.Installments, d.InstallmentAmount)
		switch {
		case err == nil:
			d.PeriodicRate = rate
			d.HasRate = true
			log.WithFields(log.Fields{
				"debt_id": d.ID,
				"rate":    rate,
			}).Debug("solved periodic rate")
		case errors.Is(err, loan.ErrNoConvergence):
			log.WithError(err).WithField("debt_id", d.ID).Warn("periodic rate undetermined")
		default:
			return Debt{}, err
		}
	}

	return d, nil
}

// ApplyPayment allocates amount against the stored debt and records it.
// A zero mode selects the debt's DefaultMode.
func ApplyPayment(
	ctx context.Context,
	store Store,
	alloc loan.Allocator,
	debtID string,
	amount float64,
	mode loan.Mode,
	when time.Time,
) (Payment, error) {
	d, err := store.GetDebt(ctx, debtID)
	if err != nil {
		return Payment{}, err
	}

	if mode == 0 {
		mode = d.DefaultMode()
	}
	if mode == loan.FixedInstallment && !d.HasRate {
		return Payment{}, fmt.Errorf("debt %s: %w", d.ID, ErrRateUnknown)
	}

	a, err := alloc.Allocate(d.Snapshot(), amount, mode)
	if err != nil {
		return Payment{}, fmt.Errorf("allocate payment for debt %s: %w", d.ID, err)
	}

	p := Payment{
		ID:          id.At(when),
		DebtID:      d.ID,
		Time:        when.UTC(),
		Amount:      amount,
		Mode:        mode,
		Interest:    a.Interest,
		Capital:     a.Capital,
		Overpayment: a.Overpayment,
	}
	if err := store.RecordPayment(ctx, p); err != nil {
		return Payment{}, fmt.Errorf("record payment: %w", err)
	}

	log.WithFields(log.Fields{
		"debt_id":  d.ID,
		"mode":     mode.String(),
		"interest": p.Interest,
		"capital":  p.Capital,
	}).Info("payment recorded")

	return p, nil
}

// Totals sums the interest and capital of a list of payments.
func Totals(payments []Payment) (interest, capital float64) {
	for _, p := range payments {
		interest += p.Interest
		capital += p.Capital
	}
	return interest, capital
}
