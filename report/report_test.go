package report

import (
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/amortize/ledger"
	"github.com/rustyeddy/amortize/loan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consumerSchedule(t *testing.T) []loan.Row {
	t.Helper()

	_, rows, err := loan.DefaultSolver().ScheduleFor(loan.Terms{
		Principal:    15_000_000,
		Installments: 36,
		Installment:  761_000,
	})
	require.NoError(t, err)
	return rows
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	rows := consumerSchedule(t)

	s, err := Summarize(rows, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, s.Through)
	assert.InDelta(t, 4_025_862.07, s.CapitalPaid, 0.01)
	assert.InDelta(t, 7_389_137.93, s.InterestPaid, 0.01)
	assert.InDelta(t, 11_415_000, s.TotalPaid, 1e-6)
	assert.InDelta(t, 10_974_137.93, s.RemainingDebt, 0.01)
	assert.InDelta(t, rows[14].Balance, s.RemainingDebt, 1e-3)

	full, err := Summarize(rows, 36)
	require.NoError(t, err)
	assert.InDelta(t, 0, full.RemainingDebt, 1)

	_, err = Summarize(rows, 0)
	assert.ErrorIs(t, err, loan.ErrInvalidInput)
	_, err = Summarize(rows, 37)
	assert.ErrorIs(t, err, loan.ErrInvalidInput)
}

func TestNegativeAmortization(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, NegativeAmortization(consumerSchedule(t)))

	rows, err := loan.GenerateSchedule(1000, 0.1, 3, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, NegativeAmortization(rows))
}

func TestTotals(t *testing.T) {
	t.Parallel()

	interest, capital := Totals(consumerSchedule(t))
	assert.InEpsilon(t, 15_000_000, capital, 1e-6)
	assert.InDelta(t, 36*761_000-15_000_000, interest, 1)
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3.7031%", FormatRate(0.03703122463568174))
}

func TestFormatScheduleTable(t *testing.T) {
	t.Parallel()

	out := FormatScheduleTable(consumerSchedule(t)[:2], 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Interest")
	assert.Contains(t, lines[1], "555,468")
	assert.Contains(t, lines[1], "205,532")
	assert.Contains(t, lines[1], "14,794,468")
}

func TestFormatScheduleOrg(t *testing.T) {
	t.Parallel()

	out := FormatScheduleOrg(consumerSchedule(t), 0)
	assert.True(t, strings.HasPrefix(out, "| # | Payment | Interest | Capital | Balance |\n"))
	assert.Contains(t, out, "| 1 | 761,000 | 555,468 | 205,532 | 14,794,468 |\n")
	assert.Contains(t, out, "| 36 | 761,000 |")
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	out := FormatSummary(Summary{Through: 15, CapitalPaid: 4_025_862.07, InterestPaid: 7_389_137.93, TotalPaid: 11_415_000, RemainingDebt: 10_974_137.93}, 0)
	assert.Contains(t, out, "Status after 15 payments:")
	assert.Contains(t, out, "Capital paid:   4,025,862")
	assert.Contains(t, out, "Remaining debt: 10,974,138")
}

func TestFormatDebtOrg(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	v := DebtView{
		Debt: ledger.Debt{
			ID:                "01JC0000000000000000000000",
			Description:       "Car loan",
			Creditor:          "Bank",
			TotalAmount:       15_000_000,
			PaidAmount:        205_532,
			PeriodicRate:      0.03703122463568174,
			HasRate:           true,
			Installments:      36,
			InstallmentAmount: 761_000,
			StartDate:         time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		Payments: []ledger.Payment{{
			Time:     when,
			Amount:   761_000,
			Mode:     loan.FixedInstallment,
			Interest: 555_468,
			Capital:  205_532,
		}},
		Currency: "COP",
		Places:   0,
	}

	out, err := FormatDebtOrg(v)
	require.NoError(t, err)
	assert.Contains(t, out, "** Debt: Car loan (01JC0000)")
	assert.Contains(t, out, ":RATE:         3.7031%")
	assert.Contains(t, out, ":OUTSTANDING:  14,794,468")
	assert.Contains(t, out, ":INSTALLMENTS: 36 x 761,000")
	assert.Contains(t, out, ":START_DATE:   2024-11-01")
	assert.Contains(t, out, ":DUE_DATE:     -")
	assert.Contains(t, out, "| 2024-12-01 | installment | 761,000 | 555,468 | 205,532 |")

	v.Debt.HasRate = false
	v.Payments = nil
	out, err = FormatDebtOrg(v)
	require.NoError(t, err)
	assert.Contains(t, out, "(undetermined)")
	assert.NotContains(t, out, "*** Payments")
}
