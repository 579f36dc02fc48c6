package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// BUCKET CSV - Delimited text rendering
// =============================================================================

// ToCSV renders buckets as comma-delimited text. The header is
// "hours,count," followed by the sorted distinct key field names; an empty
// bucket set renders just "key,hours,count" plus a newline. Hours print with
// two decimal places.
func ToCSV(buckets []Bucket) string {
	if len(buckets) == 0 {
		return "key,hours,count\n"
	}

	fieldSet := make(map[string]bool)
	for _, b := range buckets {
		for k := range b.Key {
			fieldSet[k] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	lines := []string{strings.Join(append([]string{"hours", "count"}, fields...), ",")}
	for _, b := range buckets {
		row := []string{fmt.Sprintf("%.2f", b.Hours), strconv.Itoa(b.Count)}
		for _, k := range fields {
			row = append(row, b.Key[k])
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n") + "\n"
}
