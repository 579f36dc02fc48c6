/*
reporting.go - Flat reports, billing, CSV export

PURPOSE:
  Report generation over the persisted entry set: filtered flat reports,
  billing restricted to approved entries, and a fixed-header CSV export.
  Grouping/aggregation lives in the report package; these operations stay on
  the Tracker because billing needs the rate resolver and employee roles.

FILTERS:
  Each filter field applies only when present. Date-range filtering is
  inclusive-overlap: an entry matches when entry.End >= start and
  entry.Start <= end.

SEE ALSO:
  - report/: dimension bucketing and bucket CSV rendering
  - rates.go: resolution used for billing amounts
*/
package tracking

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FLAT REPORTS
// =============================================================================

// StatusAll disables status filtering in report params.
const StatusAll EntryStatus = "all"

type ReportParams struct {
	CompanyID  CompanyID
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Status     EntryStatus // empty or StatusAll matches every status
	Start      *time.Time
	End        *time.Time
}

type TimeReport struct {
	CompanyID  CompanyID
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Start      time.Time
	End        time.Time
	TotalHours float64
	Entries    []*TimeEntry
}

// GenerateReport filters the entry set and totals its hours.
func (t *Tracker) GenerateReport(p ReportParams) TimeReport {
	var entries []*TimeEntry
	totalMinutes := 0
	for _, e := range t.stores.Entries().List() {
		if !matchesParams(e, p) {
			continue
		}
		entries = append(entries, e)
		totalMinutes += e.Minutes()
	}

	report := TimeReport{
		CompanyID:  p.CompanyID,
		EmployeeID: p.EmployeeID,
		ProjectID:  p.ProjectID,
		TotalHours: float64(totalMinutes) / 60,
		Entries:    entries,
	}
	now := time.Now().UTC()
	report.Start, report.End = now, now
	if p.Start != nil {
		report.Start = *p.Start
	}
	if p.End != nil {
		report.End = *p.End
	}
	return report
}

func matchesParams(e *TimeEntry, p ReportParams) bool {
	if p.CompanyID != "" && e.CompanyID != p.CompanyID {
		return false
	}
	if p.EmployeeID != "" && e.EmployeeID != p.EmployeeID {
		return false
	}
	if p.ProjectID != "" && e.ProjectID != p.ProjectID {
		return false
	}
	if p.Status != "" && p.Status != StatusAll && e.EffectiveStatus() != p.Status {
		return false
	}
	if p.Start != nil && e.End.Before(*p.Start) {
		return false
	}
	if p.End != nil && e.Start.After(*p.End) {
		return false
	}
	return true
}

// =============================================================================
// BILLING
// =============================================================================

type BillingParams struct {
	CompanyID CompanyID
	Start     time.Time
	End       time.Time
}

type BillingItem struct {
	EntryID    EntryID
	ProjectID  ProjectID
	EmployeeID EmployeeID
	Hours      float64
	Billable   bool
	Amount     decimal.Decimal
	Currency   string
}

type CurrencyTotal struct {
	Amount decimal.Decimal
	Hours  float64
}

type BillingReport struct {
	Start            time.Time
	End              time.Time
	Items            []BillingItem
	TotalsByCurrency map[string]CurrencyTotal
}

// GenerateBillingReport prices the company's approved entries in the range.
// Amount is hours x rate when a billable card resolves, zero otherwise.
// Entries without a resolved currency total under the "N/A" key.
func (t *Tracker) GenerateBillingReport(p BillingParams) BillingReport {
	base := t.GenerateReport(ReportParams{
		CompanyID: p.CompanyID,
		Status:    StatusApproved,
		Start:     &p.Start,
		End:       &p.End,
	})

	report := BillingReport{
		Start:            p.Start,
		End:              p.End,
		TotalsByCurrency: make(map[string]CurrencyTotal),
	}
	for _, e := range base.Entries {
		hours := e.Hours()
		role := ""
		if emp, ok := t.stores.Employees().Get(e.EmployeeID); ok {
			role = emp.Role
		}
		card := t.rates.Resolve(e.CompanyID, RateSelector{
			EmployeeID: e.EmployeeID,
			ProjectID:  e.ProjectID,
			Role:       role,
		}, e.Start)

		item := BillingItem{
			EntryID:    e.ID,
			ProjectID:  e.ProjectID,
			EmployeeID: e.EmployeeID,
			Hours:      hours,
			Amount:     decimal.Zero,
		}
		if card != nil {
			item.Billable = card.Billable
			item.Currency = card.Currency
			if card.Billable {
				item.Amount = card.Rate.Mul(decimal.NewFromFloat(hours))
			}
		}
		report.Items = append(report.Items, item)

		currency := item.Currency
		if currency == "" {
			currency = "N/A"
		}
		total := report.TotalsByCurrency[currency]
		total.Amount = total.Amount.Add(item.Amount)
		total.Hours += item.Hours
		report.TotalsByCurrency[currency] = total
	}
	return report
}

// =============================================================================
// CSV EXPORT
// =============================================================================

// ExportReportToCSV renders a flat report with the fixed header
// entryId,companyId,employeeId,projectId,status,startTime,endTime,duration,billable.
// Timestamps are RFC 3339 so rows round-trip.
func ExportReportToCSV(report TimeReport) string {
	var b strings.Builder
	b.WriteString("entryId,companyId,employeeId,projectId,status,startTime,endTime,duration,billable")
	for _, e := range report.Entries {
		row := []string{
			string(e.ID),
			string(e.CompanyID),
			string(e.EmployeeID),
			string(e.ProjectID),
			string(e.EffectiveStatus()),
			e.Start.UTC().Format(time.RFC3339),
			e.End.UTC().Format(time.RFC3339),
			strconv.Itoa(e.Minutes()),
			strconv.FormatBool(e.Billable),
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}
