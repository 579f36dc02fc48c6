/*
Package report groups time entries into arbitrary-dimension buckets and
renders them as delimited text.

PURPOSE:
  The aggregation engine consumes a persisted entry set independently of the
  tracking pipeline, on demand. Filtering precedes grouping; buckets are
  keyed by the tuple of requested dimension values and accumulate hours and
  a count.

DIMENSIONS:
  companyId / employeeId / projectId  - copied from the entry
  status                              - defaults to draft when unset
  tag                                 - the entry's FIRST tag only (single
                                        valued, no fan-out per tag)
  day / week / month                  - derived from the entry start in UTC
                                        (see calendar.go)

COST ROLLUP:
  A cost rollup annotates every bucket with a zero USD amount. Rate-aware
  cost aggregation is a known gap, kept as a stub on purpose; do not invent
  pricing here.

SEE ALSO:
  - calendar.go: day/week/month key computation
  - csv.go: bucket serialization
*/
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akimsoule/timelyhub/tracking"
)

// =============================================================================
// QUERY MODEL
// =============================================================================

type Dimension string

const (
	ByCompany  Dimension = "companyId"
	ByEmployee Dimension = "employeeId"
	ByProject  Dimension = "projectId"
	ByStatus   Dimension = "status"
	ByTag      Dimension = "tag"
	ByDay      Dimension = "day"
	ByWeek     Dimension = "week"
	ByMonth    Dimension = "month"
)

type Rollup string

const (
	RollupHours Rollup = "hours"
	RollupCost  Rollup = "cost"
)

// Filter fields apply only when set. Date-range filtering is
// inclusive-overlap; an empty Tags list is a no-op, not "match nothing".
type Filter struct {
	CompanyID  tracking.CompanyID
	EmployeeID tracking.EmployeeID
	ProjectID  tracking.ProjectID
	Status     tracking.EntryStatus
	Start      *time.Time
	End        *time.Time
	Tags       []string
}

type Query struct {
	GroupBy []Dimension
	Filter  *Filter
	Rollup  Rollup
}

// Cost is the placeholder cost annotation. Always zero USD for now.
type Cost struct {
	Amount   decimal.Decimal
	Currency string
}

type Bucket struct {
	Key   map[string]string
	Hours float64
	Count int
	Cost  *Cost
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate filters entries, then folds them into buckets keyed by the
// query's dimension tuple. Buckets come back in first-seen order.
func Aggregate(entries []*tracking.TimeEntry, q Query) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket

	for _, e := range entries {
		if !matches(e, q.Filter) {
			continue
		}

		keyFields := make(map[string]string, len(q.GroupBy))
		parts := make([]string, 0, len(q.GroupBy))
		for _, dim := range q.GroupBy {
			value := dimensionValue(e, dim)
			keyFields[string(dim)] = value
			parts = append(parts, string(dim)+"="+value)
		}
		composite := strings.Join(parts, ";")

		i, ok := index[composite]
		if !ok {
			i = len(buckets)
			index[composite] = i
			buckets = append(buckets, Bucket{Key: keyFields})
		}
		buckets[i].Hours += e.Hours()
		buckets[i].Count++
	}

	if q.Rollup == RollupCost {
		for i := range buckets {
			buckets[i].Cost = &Cost{Amount: decimal.Zero, Currency: "USD"}
		}
	}
	return buckets
}

func dimensionValue(e *tracking.TimeEntry, dim Dimension) string {
	switch dim {
	case ByCompany:
		return string(e.CompanyID)
	case ByEmployee:
		return string(e.EmployeeID)
	case ByProject:
		return string(e.ProjectID)
	case ByStatus:
		return string(e.EffectiveStatus())
	case ByTag:
		if len(e.Tags) > 0 {
			return e.Tags[0]
		}
		return ""
	case ByDay:
		return DayKey(e.Start)
	case ByWeek:
		return WeekKey(e.Start)
	case ByMonth:
		return MonthKey(e.Start)
	}
	return ""
}

func matches(e *tracking.TimeEntry, f *Filter) bool {
	if f == nil {
		return true
	}
	if f.CompanyID != "" && e.CompanyID != f.CompanyID {
		return false
	}
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && e.EffectiveStatus() != f.Status {
		return false
	}
	if f.Start != nil && e.End.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Start.After(*f.End) {
		return false
	}
	if len(f.Tags) > 0 && !intersects(e.Tags, f.Tags) {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
