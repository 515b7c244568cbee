package simulation

import (
	"sort"
	"time"

	"github.com/aristath/folio/internal/domain"
)

// RangeStart returns the first date of the window ending at the last date.
// The lower bound is the first day of the month N months before the last
// date; the window starts at the first date on or after it, falling back
// to the first date when none qualifies. MAX always starts at the first date.
func RangeStart(dates []string, r Range) string {
	if len(dates) == 0 {
		return ""
	}

	months, ok := rangeMonths[r]
	if !ok {
		return dates[0]
	}

	last, err := time.Parse(domain.DateLayout, dates[len(dates)-1])
	if err != nil {
		return dates[0]
	}

	lower := time.Date(last.Year(), last.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC).
		Format(domain.DateLayout)

	i := sort.SearchStrings(dates, lower)
	if i == len(dates) {
		return dates[0]
	}
	return dates[i]
}

// windowStart returns the index of the first date >= start, or 0.
func windowStart(dates []string, start string) int {
	if start == "" {
		return 0
	}
	i := sort.SearchStrings(dates, start)
	if i == len(dates) {
		return 0
	}
	return i
}
