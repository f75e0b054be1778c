package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatePayment_CapitalOnly(t *testing.T) {
	t.Parallel()

	got, err := AllocatePayment(DebtSnapshot{OutstandingBalance: 500_000}, 100_000, CapitalOnly)
	require.NoError(t, err)
	assert.Equal(t, Allocation{Interest: 0, Capital: 100_000}, got)

	// Capital never exceeds the balance; the excess is reported.
	got, err = AllocatePayment(DebtSnapshot{OutstandingBalance: 40_000, PeriodicRate: 0.02}, 100_000, CapitalOnly)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Interest)
	assert.Equal(t, 40_000.0, got.Capital)
	assert.Equal(t, 60_000.0, got.Overpayment)
}

func TestAllocatePayment_InterestOnly(t *testing.T) {
	t.Parallel()

	got, err := AllocatePayment(DebtSnapshot{OutstandingBalance: 1_000_000, PeriodicRate: 0.02}, 20_000, InterestOnly)
	require.NoError(t, err)
	assert.Equal(t, Allocation{Interest: 20_000, Capital: 0}, got)
}

func TestAllocatePayment_FixedInstallment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snap     DebtSnapshot
		payment  float64
		interest float64
		capital  float64
		over     float64
	}{
		{
			name:     "consumer_row_1",
			snap:     DebtSnapshot{OutstandingBalance: 15_000_000, PeriodicRate: 0.03703122463568174},
			payment:  761_000,
			interest: 555_468.37,
			capital:  205_531.63,
		},
		{
			name:     "round_number",
			snap:     DebtSnapshot{OutstandingBalance: 1_000_000, PeriodicRate: 0.02},
			payment:  50_000,
			interest: 20_000,
			capital:  30_000,
		},
		{
			name:     "zero_rate",
			snap:     DebtSnapshot{OutstandingBalance: 1_000, PeriodicRate: 0},
			payment:  100,
			interest: 0,
			capital:  100,
		},
		{
			name:     "final_payment_overpays",
			snap:     DebtSnapshot{OutstandingBalance: 100, PeriodicRate: 0.01},
			payment:  150,
			interest: 1,
			capital:  100,
			over:     49,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := AllocatePayment(tt.snap, tt.payment, FixedInstallment)
			require.NoError(t, err)
			assert.InDelta(t, tt.interest, got.Interest, 1e-9)
			assert.InDelta(t, tt.capital, got.Capital, 1e-9)
			assert.InDelta(t, tt.over, got.Overpayment, 1e-9)
			assert.InDelta(t, tt.payment, got.Interest+got.Capital+got.Overpayment, 1e-9)
		})
	}
}

func TestAllocatePayment_InsufficientPayment(t *testing.T) {
	t.Parallel()

	got, err := AllocatePayment(DebtSnapshot{OutstandingBalance: 1_000_000, PeriodicRate: 0.02}, 15_000, FixedInstallment)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Equal(t, Allocation{}, got)

	// Exactly the accrued interest leaves no capital.
	_, err = AllocatePayment(DebtSnapshot{OutstandingBalance: 1_000_000, PeriodicRate: 0.02}, 20_000, FixedInstallment)
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	// Rounding the interest down must not let a sub-cent shortfall through.
	_, err = AllocatePayment(DebtSnapshot{OutstandingBalance: 10_000.4, PeriodicRate: 0.01}, 100.004, FixedInstallment)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestAllocator_Places(t *testing.T) {
	t.Parallel()

	a := Allocator{Places: 0}
	got, err := a.Allocate(DebtSnapshot{OutstandingBalance: 15_000_000, PeriodicRate: 0.03703122463568174}, 761_000, FixedInstallment)
	require.NoError(t, err)
	assert.Equal(t, 555_468.0, got.Interest)
	assert.Equal(t, 205_532.0, got.Capital)
}

func TestAllocatePayment_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		snap    DebtSnapshot
		payment float64
		mode    Mode
	}{
		{"zero_payment", DebtSnapshot{OutstandingBalance: 100}, 0, CapitalOnly},
		{"negative_balance", DebtSnapshot{OutstandingBalance: -1}, 10, CapitalOnly},
		{"negative_rate", DebtSnapshot{OutstandingBalance: 100, PeriodicRate: -0.1}, 10, FixedInstallment},
		{"unknown_mode", DebtSnapshot{OutstandingBalance: 100}, 10, Mode(42)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := AllocatePayment(tt.snap, tt.payment, tt.mode)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{CapitalOnly, InterestOnly, FixedInstallment} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.True(t, m.Valid())
	}

	got, err := ParseMode(" Interest-Only ")
	require.NoError(t, err)
	assert.Equal(t, InterestOnly, got)

	_, err = ParseMode("bogus")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Mode(9)", Mode(9).String())
	assert.False(t, Mode(0).Valid())
}
