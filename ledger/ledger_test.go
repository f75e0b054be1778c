package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/amortize/loan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()

	sq, err := NewSQLite(filepath.Join(dir, "ledger.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	cs, err := NewCSV(filepath.Join(dir, "csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return map[string]Store{"sqlite": sq, "csv": cs}
}

func installmentDebt(t *testing.T) Debt {
	t.Helper()

	d, err := NewDebt(Debt{
		Description:       "Car loan",
		Creditor:          "Bank",
		TotalAmount:       15_000_000,
		Installments:      36,
		InstallmentAmount: 761_000,
		StartDate:         time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
	}, loan.DefaultSolver(), testNow)
	require.NoError(t, err)
	return d
}

func TestNewDebt_SolvesRate(t *testing.T) {
	t.Parallel()

	d := installmentDebt(t)
	assert.NotEmpty(t, d.ID)
	assert.True(t, d.HasRate)
	assert.InDelta(t, 0.0370312246, d.PeriodicRate, 1e-6)
	assert.Equal(t, loan.FixedInstallment, d.DefaultMode())
	assert.True(t, d.CreatedAt.Equal(testNow))
}

func TestNewDebt_KeepsStatedRate(t *testing.T) {
	t.Parallel()

	d, err := NewDebt(Debt{
		Description:  "Family loan",
		TotalAmount:  1_000_000,
		PeriodicRate: 0.02,
		HasRate:      true,
		InterestOnly: true,
	}, loan.DefaultSolver(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 0.02, d.PeriodicRate)
	assert.Equal(t, loan.InterestOnly, d.DefaultMode())
}

func TestNewDebt_UndeterminedRate(t *testing.T) {
	t.Parallel()

	d, err := NewDebt(Debt{
		Description:       "Odd terms",
		TotalAmount:       1_000,
		Installments:      360,
		InstallmentAmount: 1e9,
	}, loan.DefaultSolver(), testNow)
	require.NoError(t, err)
	assert.False(t, d.HasRate)
	assert.Equal(t, 0.0, d.PeriodicRate)

	_, err = d.Schedule()
	assert.ErrorIs(t, err, ErrRateUnknown)
}

func TestNewDebt_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		debt Debt
	}{
		{"no_description", Debt{TotalAmount: 10}},
		{"zero_total", Debt{Description: "x"}},
		{"overpaid", Debt{Description: "x", TotalAmount: 10, PaidAmount: 11}},
		{"negative_rate", Debt{Description: "x", TotalAmount: 10, HasRate: true, PeriodicRate: -0.1}},
		{"count_without_amount", Debt{Description: "x", TotalAmount: 10, Installments: 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDebt(tt.debt, loan.DefaultSolver(), testNow)
			assert.ErrorIs(t, err, loan.ErrInvalidInput)
		})
	}
}

func TestDebtHelpers(t *testing.T) {
	t.Parallel()

	d := Debt{TotalAmount: 500_000, PaidAmount: 100_000}
	assert.Equal(t, 400_000.0, d.Outstanding())
	assert.InDelta(t, 20.0, d.Progress(), 1e-9)
	assert.Equal(t, loan.CapitalOnly, d.DefaultMode())
	assert.Equal(t, loan.DebtSnapshot{OutstandingBalance: 400_000}, d.Snapshot())

	d.PaidAmount = 600_000
	assert.Equal(t, 0.0, d.Outstanding())
	assert.Equal(t, 100.0, d.Progress())

	_, err := d.Schedule()
	assert.ErrorIs(t, err, loan.ErrInvalidInput)
}

func TestDebtSchedule(t *testing.T) {
	t.Parallel()

	rows, err := installmentDebt(t).Schedule()
	require.NoError(t, err)
	require.Len(t, rows, 36)
	assert.InDelta(t, 555_468, rows[0].Interest, 1)
}

func TestStore_DebtLifecycle(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			d := installmentDebt(t)
			require.NoError(t, s.AddDebt(ctx, d))

			got, err := s.GetDebt(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, d.ID, got.ID)
			assert.Equal(t, d.Description, got.Description)
			assert.Equal(t, d.Creditor, got.Creditor)
			assert.Equal(t, d.HasRate, got.HasRate)
			assert.InDelta(t, d.PeriodicRate, got.PeriodicRate, 1e-15)
			assert.Equal(t, d.Installments, got.Installments)
			assert.True(t, got.StartDate.Equal(d.StartDate))
			assert.True(t, got.DueDate.IsZero())
			assert.True(t, got.CreatedAt.Equal(d.CreatedAt))

			other, err := NewDebt(Debt{Description: "Card", TotalAmount: 500_000}, loan.DefaultSolver(), testNow.Add(time.Minute))
			require.NoError(t, err)
			require.NoError(t, s.AddDebt(ctx, other))

			list, err := s.ListDebts(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, d.ID, list[0].ID)
			assert.False(t, list[1].HasRate)

			require.NoError(t, s.DeleteDebt(ctx, other.ID))
			_, err = s.GetDebt(ctx, other.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteDebt(ctx, other.ID), ErrNotFound)
		})
	}
}

func TestApplyPayment(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			alloc := loan.Allocator{Places: 0}

			d := installmentDebt(t)
			require.NoError(t, s.AddDebt(ctx, d))

			p, err := ApplyPayment(ctx, s, alloc, d.ID, 761_000, 0, testNow)
			require.NoError(t, err)
			assert.Equal(t, loan.FixedInstallment, p.Mode)
			assert.Equal(t, 555_468.0, p.Interest)
			assert.Equal(t, 205_532.0, p.Capital)

			// Interest-only payments do not reduce the debt.
			_, err = ApplyPayment(ctx, s, alloc, d.ID, 50_000, loan.InterestOnly, testNow.Add(time.Hour))
			require.NoError(t, err)

			_, err = ApplyPayment(ctx, s, alloc, d.ID, 1_000_000, loan.CapitalOnly, testNow.Add(2*time.Hour))
			require.NoError(t, err)

			got, err := s.GetDebt(ctx, d.ID)
			require.NoError(t, err)
			assert.InDelta(t, 1_205_532, got.PaidAmount, 1e-6)
			assert.InDelta(t, 13_794_468, got.Outstanding(), 1e-6)

			payments, err := s.ListPayments(ctx, d.ID)
			require.NoError(t, err)
			require.Len(t, payments, 3)
			assert.Equal(t, []loan.Mode{loan.FixedInstallment, loan.InterestOnly, loan.CapitalOnly},
				[]loan.Mode{payments[0].Mode, payments[1].Mode, payments[2].Mode})

			interest, capital := Totals(payments)
			assert.InDelta(t, 605_468, interest, 1e-6)
			assert.InDelta(t, 1_205_532, capital, 1e-6)

			_, err = ApplyPayment(ctx, s, alloc, d.ID, 15_000, loan.FixedInstallment, testNow.Add(3*time.Hour))
			assert.ErrorIs(t, err, loan.ErrInsufficientPayment)

			payments, err = s.ListPayments(ctx, d.ID)
			require.NoError(t, err)
			assert.Len(t, payments, 3)

			_, err = ApplyPayment(ctx, s, alloc, "missing", 10, 0, testNow)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestApplyPayment_RateUnknown(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			d, err := NewDebt(Debt{
				Description:       "Odd terms",
				TotalAmount:       1_000,
				Installments:      360,
				InstallmentAmount: 1e9,
			}, loan.DefaultSolver(), testNow)
			require.NoError(t, err)
			require.NoError(t, s.AddDebt(ctx, d))

			_, err = ApplyPayment(ctx, s, loan.Allocator{Places: 2}, d.ID, 100, 0, testNow)
			assert.ErrorIs(t, err, ErrRateUnknown)

			p, err := ApplyPayment(ctx, s, loan.Allocator{Places: 2}, d.ID, 100, loan.CapitalOnly, testNow)
			require.NoError(t, err)
			assert.Equal(t, 100.0, p.Capital)
		})
	}
}
