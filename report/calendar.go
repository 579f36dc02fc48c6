package report

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR BUCKET KEYS - UTC only, no timezone library
// =============================================================================

// DayKey returns the UTC calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthKey returns the UTC calendar month as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// WeekKey returns the ISO-8601 week as YYYY-Www: week 1 contains the year's
// first Thursday and weeks run Monday through Sunday. The year is the ISO
// week-numbering year, which can differ from the calendar year at the
// boundaries.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
