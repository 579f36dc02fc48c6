package tracking

import "time"

// =============================================================================
// PERIOD BOOK - Closed accounting periods per company
// =============================================================================

// PeriodBook records immutable period closures. There is no reopen.
type PeriodBook struct {
	periods []Period
}

func NewPeriodBook() *PeriodBook { return &PeriodBook{} }

// Close records [start, end) as closed for the company.
func (p *PeriodBook) Close(companyID CompanyID, start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidPeriod
	}
	p.periods = append(p.periods, Period{CompanyID: companyID, Start: start, End: end})
	return nil
}

// IsClosed reports whether [start, end) overlaps any closed period for the
// company, using half-open semantics.
func (p *PeriodBook) IsClosed(companyID CompanyID, start, end time.Time) bool {
	for _, period := range p.periods {
		if period.CompanyID == companyID && Overlaps(start, end, period.Start, period.End) {
			return true
		}
	}
	return false
}

// List returns closures for a company, or all closures when companyID is empty.
func (p *PeriodBook) List(companyID CompanyID) []Period {
	if companyID == "" {
		return append([]Period(nil), p.periods...)
	}
	var out []Period
	for _, period := range p.periods {
		if period.CompanyID == companyID {
			out = append(out, period)
		}
	}
	return out
}
