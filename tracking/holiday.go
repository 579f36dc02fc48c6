/*
holiday.go - Company holiday calendar and static holiday source

PURPOSE:
  HolidayBook answers "is this UTC date a holiday for this company" for the
  policy pipeline. HolidaySource abstracts where holiday lists come from;
  StaticSource ships a minimal per-country set so demos and tests need no
  external data.
*/
package tracking

import (
	"fmt"
	"time"
)

// =============================================================================
// HOLIDAY BOOK
// =============================================================================

type HolidayBook struct {
	holidays []Holiday
}

func NewHolidayBook() *HolidayBook { return &HolidayBook{} }

func (b *HolidayBook) Add(h Holiday) { b.holidays = append(b.holidays, h) }

// List returns holidays for a company, or all when companyID is empty.
func (b *HolidayBook) List(companyID CompanyID) []Holiday {
	if companyID == "" {
		return append([]Holiday(nil), b.holidays...)
	}
	var out []Holiday
	for _, h := range b.holidays {
		if h.CompanyID == companyID {
			out = append(out, h)
		}
	}
	return out
}

// IsHoliday compares UTC calendar dates; the time of day is ignored.
func (b *HolidayBook) IsHoliday(companyID CompanyID, date time.Time) bool {
	y, m, d := date.UTC().Date()
	for _, h := range b.holidays {
		hy, hm, hd := h.Date.UTC().Date()
		if h.CompanyID == companyID && hy == y && hm == m && hd == d {
			return true
		}
	}
	return false
}

func (b *HolidayBook) Clear() { b.holidays = nil }

// =============================================================================
// HOLIDAY SOURCE - Pluggable provider of holiday lists
// =============================================================================

type HolidaySource interface {
	Fetch(country string, year int) []Holiday
}

// StaticSource serves a minimal built-in set (New Year plus Labour Day) for
// a couple of countries. Unknown countries yield an empty list.
type StaticSource struct{}

func (StaticSource) Fetch(country string, year int) []Holiday {
	day := func(month time.Month, d int) time.Time {
		return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	}
	switch country {
	case "FR":
		return []Holiday{
			{ID: fmt.Sprintf("FR-%d-NY", year), Date: day(time.January, 1), Name: "Jour de l'An"},
			{ID: fmt.Sprintf("FR-%d-LD", year), Date: day(time.May, 1), Name: "Fête du Travail"},
		}
	case "US":
		return []Holiday{
			{ID: fmt.Sprintf("US-%d-NY", year), Date: day(time.January, 1), Name: "New Year's Day"},
			{ID: fmt.Sprintf("US-%d-LD", year), Date: day(time.September, 1), Name: "Labor Day (approx)"},
		}
	}
	return nil
}
