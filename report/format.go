package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/rustyeddy/amortize/ledger"
	"github.com/rustyeddy/amortize/loan"
	"github.com/rustyeddy/amortize/money"
	"github.com/rustyeddy/amortize/pkg/id"
)

// RatePlaces is the number of decimals used when printing a rate as a
// percentage.
const RatePlaces = 4

// FormatRate prints a fraction-of-one rate as a percentage.
func FormatRate(rate float64) string {
	return money.FormatPercent(rate, RatePlaces)
}

// FormatScheduleTable renders rows as an aligned text table.
func FormatScheduleTable(rows []loan.Row, places int32) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tPayment\tInterest\tCapital\tBalance\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			r.Period,
			money.Format(r.Payment, places),
			money.Format(r.Interest, places),
			money.Format(r.Capital, places),
			money.Format(r.Balance, places),
		)
	}
	tw.Flush()
	return b.String()
}

// FormatScheduleOrg renders rows as an Org-mode table.
func FormatScheduleOrg(rows []loan.Row, places int32) string {
	var b strings.Builder
	b.WriteString("| # | Payment | Interest | Capital | Balance |\n")
	b.WriteString("|---+---------+----------+---------+---------|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			r.Period,
			money.Format(r.Payment, places),
			money.Format(r.Interest, places),
			money.Format(r.Capital, places),
			money.Format(r.Balance, places),
		)
	}
	return b.String()
}

// FormatSummary renders a partial-schedule summary.
func FormatSummary(s Summary, places int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status after %d payments:\n", s.Through)
	fmt.Fprintf(&b, "  Capital paid:   %s\n", money.Format(s.CapitalPaid, places))
	fmt.Fprintf(&b, "  Interest paid:  %s\n", money.Format(s.InterestPaid, places))
	fmt.Fprintf(&b, "  Total paid:     %s\n", money.Format(s.TotalPaid, places))
	fmt.Fprintf(&b, "  Remaining debt: %s\n", money.Format(s.RemainingDebt, places))
	return b.String()
}

// DebtView is the data behind FormatDebtOrg.
type DebtView struct {
	Debt     ledger.Debt
	Payments []ledger.Payment
	Currency string
	Places   int32
}

var debtOrgFuncs = template.FuncMap{
	"short": id.Short,
	"amount": func(x float64, places int32) string {
		return money.Format(x, places)
	},
	"rate": FormatRate,
	"day": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02")
	},
}

var debtOrgTemplate = template.Must(template.New("debt").Funcs(debtOrgFuncs).Parse(DebtOrgTemplate))

// FormatDebtOrg renders a debt and its payments as an Org-mode entry.
func FormatDebtOrg(v DebtView) (string, error) {
	var buf bytes.Buffer
	if err := debtOrgTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render debt: %w", err)
	}
	return buf.String(), nil
}

// DebtOrgTemplate is the Org-mode layout used by FormatDebtOrg.
const DebtOrgTemplate = `** Debt: {{.Debt.Description}} ({{short .Debt.ID}})
:PROPERTIES:
:DEBT_ID:      {{.Debt.ID}}
:CREDITOR:     {{if .Debt.Creditor}}{{.Debt.Creditor}}{{else}}-{{end}}
:CURRENCY:     {{.Currency}}
:TOTAL:        {{amount .Debt.TotalAmount .Places}}
:PAID:         {{amount .Debt.PaidAmount .Places}}
:OUTSTANDING:  {{amount .Debt.Outstanding .Places}}
:PROGRESS:     {{printf "%.1f" .Debt.Progress}}%
:RATE:         {{if .Debt.HasRate}}{{rate .Debt.PeriodicRate}}{{else}}(undetermined){{end}}
:INTEREST_ONLY: {{.Debt.InterestOnly}}
{{- if .Debt.HasInstallments}}
:INSTALLMENTS: {{.Debt.Installments}} x {{amount .Debt.InstallmentAmount .Places}}
{{- end}}
:START_DATE:   {{day .Debt.StartDate}}
:DUE_DATE:     {{day .Debt.DueDate}}
:END:
{{- if .Payments}}

*** Payments
| Date | Mode | Amount | Interest | Capital |
|------+------+--------+----------+---------|
{{- range .Payments}}
| {{day .Time}} | {{.Mode}} | {{amount .Amount $.Places}} | {{amount .Interest $.Places}} | {{amount .Capital $.Places}} |
{{- end}}
{{- end}}
`
