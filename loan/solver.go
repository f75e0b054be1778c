package loan

import (
	"fmt"
	"math"
)

// Solver tunables. The defaults suit consumer loans: principals in the
// millions and rates of roughly 1-5% per period.
const (
	DefaultInitialGuess  = 0.01
	DefaultStep          = 1e-5
	DefaultMaxIterations = 50
	DefaultTolerance     = 1e-6
)

// Solver finds the periodic rate implied by a fixed-installment loan using
// Newton-Raphson with a forward-difference derivative.
type Solver struct {
	InitialGuess  float64 `json:"initial_guess" yaml:"initial_guess"`
	Step          float64 `json:"step" yaml:"step"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultSolver returns a Solver with the default tunables.
func DefaultSolver() Solver {
	return Solver{
		InitialGuess:  DefaultInitialGuess,
		Step:          DefaultStep,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Validate checks the tunables themselves.
func (s Solver) Validate() error {
	if !finite(s.InitialGuess) || s.InitialGuess <= -1 || s.InitialGuess == 0 {
		return fmt.Errorf("%w: initial guess must be finite, non-zero and above -1, got %v", ErrInvalidInput, s.InitialGuess)
	}
	if !positive(s.Step) {
		return fmt.Errorf("%w: derivative step must be positive, got %v", ErrInvalidInput, s.Step)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidInput, s.MaxIterations)
	}
	if !positive(s.Tolerance) {
		return fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidInput, s.Tolerance)
	}
	return nil
}

// SolvePeriodicRate solves with DefaultSolver.
func SolvePeriodicRate(principal float64, installments int, installment float64) (float64, error) {
	return DefaultSolver().Solve(principal, installments, installment)
}

// Solve returns the fraction-of-one periodic rate r satisfying
//
//	P * r * (1+r)^n / ((1+r)^n - 1) = A
//
// When the installments do not add up to more than the principal there is
// no positive root and the rate is exactly 0. Any non-finite intermediate,
// a vanishing derivative or an exhausted iteration budget yields
// ErrNoConvergence; the returned rate is then meaningless and must not be
// shown as zero.
func (s Solver) Solve(principal float64, installments int, installment float64) (float64, error) {
	t := Terms{Principal: principal, Installments: installments, Installment: installment}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}

	if t.TotalPaid() <= principal {
		return 0, nil
	}

	r := s.InitialGuess
	for i := 0; i < s.MaxIterations; i++ {
		f := t.Residual(r)
		fh := t.Residual(r + s.Step)
		df := (fh - f) / s.Step
		if !finite(f) || !finite(df) || df == 0 {
			return 0, fmt.Errorf("%w: degenerate derivative at iteration %d (r=%v)", ErrNoConvergence, i, r)
		}

		next := r - f/df
		if !finite(next) || next <= -1 {
			return 0, fmt.Errorf("%w: iterate left the domain at iteration %d (r=%v)", ErrNoConvergence, i, next)
		}

		if math.Abs(next-r) < s.Tolerance {
			if next < 0 {
				return 0, fmt.Errorf("%w: converged to negative rate %v", ErrNoConvergence, next)
			}
			return next, nil
		}
		r = next
	}

	return 0, fmt.Errorf("%w: no convergence after %d iterations (last r=%v)", ErrNoConvergence, s.MaxIterations, r)
}

// Residual evaluates the amortization identity at rate r: the installment
// implied by r minus the actual installment.
func (t Terms) Residual(r float64) float64 {
	pow := math.Pow(1+r, float64(t.Installments))
	return t.Principal*r*pow/(pow-1) - t.Installment
}
