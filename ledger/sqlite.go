package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/amortize/loan"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite migrates the database at path and opens it.
func NewSQLite(path string) (*SQLite, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions simple.
	db.SetMaxOpenConns(1)

	return &SQLite{db: db}, nil
}

const debtColumns = `id, description, creditor, total_amount, paid_amount, periodic_rate,
	interest_only, installments, installment_amount, start_date, due_date, created_at`

func (s *SQLite) AddDebt(ctx context.Context, d Debt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debts (`+debtColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Description, d.Creditor, d.TotalAmount, d.PaidAmount,
		nullRate(d), d.InterestOnly, d.Installments, d.InstallmentAmount,
		nullTime(d.StartDate), nullTime(d.DueDate), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func (s *SQLite) GetDebt(ctx context.Context, debtID string) (Debt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = ?`, debtID)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Debt{}, fmt.Errorf("%w: %q", ErrNotFound, debtID)
	}
	return d, err
}

// ListDebts returns all debts, oldest first.
func (s *SQLite) ListDebts(ctx context.Context) ([]Debt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDebt removes a debt and its payments.
func (s *SQLite) DeleteDebt(ctx context.Context, debtID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE debt_id = ?`, debtID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, debtID)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, debtID)
	}
	return tx.Commit()
}

func (s *SQLite) RecordPayment(ctx context.Context, p Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE debts SET paid_amount = paid_amount + ? WHERE id = ?`,
		p.Capital, p.DebtID,
	)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, p.DebtID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments
		(id, debt_id, time, amount, mode, interest, capital, overpayment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.DebtID, p.Time, p.Amount, p.Mode.String(), p.Interest, p.Capital, p.Overpayment,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return tx.Commit()
}

// ListPayments returns the payments of a debt in time order.
func (s *SQLite) ListPayments(ctx context.Context, debtID string) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, debt_id, time, amount, mode, interest, capital, overpayment
		FROM payments
		WHERE debt_id = ?
		ORDER BY time ASC, id ASC`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var (
			p    Payment
			mode string
		)
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Time, &p.Amount, &mode, &p.Interest, &p.Capital, &p.Overpayment); err != nil {
			return nil, err
		}
		if p.Mode, err = loan.ParseMode(mode); err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(sc scanner) (Debt, error) {
	var (
		d     Debt
		rate  sql.NullFloat64
		start sql.NullTime
		due   sql.NullTime
	)
	err := sc.Scan(
		&d.ID, &d.Description, &d.Creditor, &d.TotalAmount, &d.PaidAmount, &rate,
		&d.InterestOnly, &d.Installments, &d.InstallmentAmount, &start, &due, &d.CreatedAt,
	)
	if err != nil {
		return Debt{}, err
	}
	d.PeriodicRate, d.HasRate = rate.Float64, rate.Valid
	if start.Valid {
		d.StartDate = start.Time
	}
	if due.Valid {
		d.DueDate = due.Time
	}
	return d, nil
}

func nullRate(d Debt) sql.NullFloat64 {
	return sql.NullFloat64{Float64: d.PeriodicRate, Valid: d.HasRate}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
