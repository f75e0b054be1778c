package loan

import (
	"fmt"
	"math"
)

// settleTolerance is the fraction of the principal below which a final
// balance is treated as fully settled.
const settleTolerance = 1e-6

// Row is one period of an amortization schedule.
type Row struct {
	Period   int     `json:"period"`
	Payment  float64 `json:"payment"`
	Interest float64 `json:"interest"`
	Capital  float64 `json:"capital"`
	Balance  float64 `json:"balance"`
}

// GenerateSchedule returns exactly installments rows in period order.
//
// Values are kept at full precision; rounding is left to the caller. A
// payment that does not cover the accruing interest produces negative
// capital and a growing balance rather than an error, so the schedule
// always reflects its inputs. Only float residue on the last row (below
// one millionth of the principal) is settled to zero.
func GenerateSchedule(principal, rate float64, installments int, installment float64) ([]Row, error) {
	t := Terms{Principal: principal, Installments: installments, Installment: installment}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !finite(rate) || rate < 0 {
		return nil, fmt.Errorf("%w: periodic rate must be a non-negative fraction, got %v", ErrInvalidInput, rate)
	}

	rows := make([]Row, 0, installments)
	balance := principal
	for i := 1; i <= installments; i++ {
		interest := balance * rate
		capital := installment - interest
		balance -= capital

		if i == installments && math.Abs(balance) < settleTolerance*principal {
			balance = 0
		}

		rows = append(rows, Row{
			Period:   i,
			Payment:  installment,
			Interest: interest,
			Capital:  capital,
			Balance:  balance,
		})
	}
	return rows, nil
}

// ScheduleFor solves the rate for t and generates its schedule.
func (s Solver) ScheduleFor(t Terms) (float64, []Row, error) {
	rate, err := s.Solve(t.Principal, t.Installments, t.Installment)
	if err != nil {
		return 0, nil, err
	}
	rows, err := GenerateSchedule(t.Principal, rate, t.Installments, t.Installment)
	if err != nil {
		return 0, nil, err
	}
	return rate, rows, nil
}
