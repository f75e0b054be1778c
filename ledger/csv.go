package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rustyeddy/amortize/loan"
)

var (
	debtHeader     = []string{"id", "description", "creditor", "total_amount", "paid_amount", "periodic_rate", "interest_only", "installments", "installment_amount", "start_date", "due_date", "created_at"}
	paymentHeader  = []string{"id", "debt_id", "time", "amount", "mode", "interest", "capital", "overpayment"}
	scheduleHeader = []string{"period", "payment", "interest", "capital", "balance"}
)

// CSV is a Store kept as debts.csv and payments.csv in a directory. The
// files are read once on open and rewritten on every change.
type CSV struct {
	mu           sync.Mutex
	debtsPath    string
	paymentsPath string
	debts        []Debt
	payments     []Payment
}

var _ Store = (*CSV)(nil)

// NewCSV opens (creating if needed) a CSV ledger in dir.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	c := &CSV{
		debtsPath:    filepath.Join(dir, "debts.csv"),
		paymentsPath: filepath.Join(dir, "payments.csv"),
	}

	debtRows, err := readCSV(c.debtsPath)
	if err != nil {
		return nil, err
	}
	for _, rec := range debtRows {
		d, err := parseDebt(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.debtsPath, err)
		}
		c.debts = append(c.debts, d)
	}

	paymentRows, err := readCSV(c.paymentsPath)
	if err != nil {
		return nil, err
	}
	for _, rec := range paymentRows {
		p, err := parsePayment(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.paymentsPath, err)
		}
		c.payments = append(c.payments, p)
	}

	return c, c.flush()
}

func (c *CSV) AddDebt(ctx context.Context, d Debt) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.find(d.ID) >= 0 {
		return fmt.Errorf("insert debt: duplicate id %q", d.ID)
	}
	c.debts = append(c.debts, d)
	return c.flush()
}

func (c *CSV) GetDebt(ctx context.Context, debtID string) (Debt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(debtID)
	if i < 0 {
		return Debt{}, fmt.Errorf("%w: %q", ErrNotFound, debtID)
	}
	return c.debts[i], nil
}

func (c *CSV) ListDebts(ctx context.Context) ([]Debt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Debt, len(c.debts))
	copy(out, c.debts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *CSV) DeleteDebt(ctx context.Context, debtID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(debtID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, debtID)
	}
	c.debts = append(c.debts[:i], c.debts[i+1:]...)

	kept := c.payments[:0]
	for _, p := range c.payments {
		if p.DebtID != debtID {
			kept = append(kept, p)
		}
	}
	c.payments = kept
	return c.flush()
}

func (c *CSV) RecordPayment(ctx context.Context, p Payment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(p.DebtID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, p.DebtID)
	}
	c.debts[i].PaidAmount += p.Capital
	c.payments = append(c.payments, p)
	return c.flush()
}

func (c *CSV) ListPayments(ctx context.Context, debtID string) ([]Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Payment
	for _, p := range c.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flush()
}

func (c *CSV) find(debtID string) int {
	for i, d := range c.debts {
		if d.ID == debtID {
			return i
		}
	}
	return -1
}

func (c *CSV) flush() error {
	debtRows := make([][]string, 0, len(c.debts))
	for _, d := range c.debts {
		debtRows = append(debtRows, formatDebt(d))
	}
	if err := writeCSVFile(c.debtsPath, debtHeader, debtRows); err != nil {
		return err
	}

	paymentRows := make([][]string, 0, len(c.payments))
	for _, p := range c.payments {
		paymentRows = append(paymentRows, formatPayment(p))
	}
	return writeCSVFile(c.paymentsPath, paymentHeader, paymentRows)
}

// WriteScheduleCSV writes schedule rows at full precision.
func WriteScheduleCSV(w io.Writer, rows []loan.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			strconv.Itoa(r.Period),
			f(r.Payment),
			f(r.Interest),
			f(r.Capital),
			f(r.Balance),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePaymentsCSV writes payments with the same columns as payments.csv.
func WritePaymentsCSV(w io.Writer, payments []Payment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(paymentHeader); err != nil {
		return err
	}
	for _, p := range payments {
		if err := cw.Write(formatPayment(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	recs, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[1:], nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	tmp := path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(fh)
	if err := cw.Write(header); err != nil {
		fh.Close()
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func formatDebt(d Debt) []string {
	rate := ""
	if d.HasRate {
		rate = g(d.PeriodicRate)
	}
	return []string{
		d.ID,
		d.Description,
		d.Creditor,
		g(d.TotalAmount),
		g(d.PaidAmount),
		rate,
		strconv.FormatBool(d.InterestOnly),
		strconv.Itoa(d.Installments),
		g(d.InstallmentAmount),
		formatTime(d.StartDate),
		formatTime(d.DueDate),
		formatTime(d.CreatedAt),
	}
}

func parseDebt(rec []string) (Debt, error) {
	if len(rec) != len(debtHeader) {
		return Debt{}, fmt.Errorf("debt row has %d fields, want %d", len(rec), len(debtHeader))
	}

	var (
		d   Debt
		err error
	)
	d.ID, d.Description, d.Creditor = rec[0], rec[1], rec[2]
	p := fieldParser{}
	d.TotalAmount = p.float(rec[3])
	d.PaidAmount = p.float(rec[4])
	if rec[5] != "" {
		d.PeriodicRate = p.float(rec[5])
		d.HasRate = true
	}
	d.InterestOnly = p.bool(rec[6])
	d.Installments = p.int(rec[7])
	d.InstallmentAmount = p.float(rec[8])
	d.StartDate = p.time(rec[9])
	d.DueDate = p.time(rec[10])
	d.CreatedAt = p.time(rec[11])
	if p.err != nil {
		err = fmt.Errorf("debt %s: %w", d.ID, p.err)
	}
	return d, err
}

func formatPayment(p Payment) []string {
	return []string{
		p.ID,
		p.DebtID,
		formatTime(p.Time),
		g(p.Amount),
		p.Mode.String(),
		g(p.Interest),
		g(p.Capital),
		g(p.Overpayment),
	}
}

func parsePayment(rec []string) (Payment, error) {
	if len(rec) != len(paymentHeader) {
		return Payment{}, fmt.Errorf("payment row has %d fields, want %d", len(rec), len(paymentHeader))
	}

	var p Payment
	fp := fieldParser{}
	p.ID, p.DebtID = rec[0], rec[1]
	p.Time = fp.time(rec[2])
	p.Amount = fp.float(rec[3])
	p.Interest = fp.float(rec[5])
	p.Capital = fp.float(rec[6])
	p.Overpayment = fp.float(rec[7])
	if fp.err != nil {
		return Payment{}, fmt.Errorf("payment %s: %w", p.ID, fp.err)
	}

	mode, err := loan.ParseMode(rec[4])
	if err != nil {
		return Payment{}, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	p.Mode = mode
	return p, nil
}

// fieldParser keeps the first conversion error so a row can be parsed
// without checking every field.
type fieldParser struct {
	err error
}

func (fp *fieldParser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	fp.keep(err)
	return v
}

func (fp *fieldParser) int(s string) int {
	v, err := strconv.Atoi(s)
	fp.keep(err)
	return v
}

func (fp *fieldParser) bool(s string) bool {
	v, err := strconv.ParseBool(s)
	fp.keep(err)
	return v
}

func (fp *fieldParser) time(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	fp.keep(err)
	return v
}

func (fp *fieldParser) keep(err error) {
	if fp.err == nil && err != nil {
		fp.err = err
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func g(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
