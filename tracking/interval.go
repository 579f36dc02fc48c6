package tracking

import (
	"math"
	"time"
)

// =============================================================================
// INTERVAL UTILITY - Half-open overlap and duration arithmetic
// =============================================================================

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// The predicate is symmetric and half-open: touching endpoints do not count.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DurationMinutes returns the span between start and end rounded to the
// nearest whole minute.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
