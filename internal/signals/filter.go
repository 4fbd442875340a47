package signals

import (
	"fmt"
	"strings"
	"time"
)

// Period selects the slice of the table a view covers.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Days returns the window length of the period, or 0 for all.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	}
	return 0
}

// ParsePeriod accepts week, month or all, case-insensitively. Empty input means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	case "":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// FilterPeriod returns the records that fall in period. When no record has a
// genuinely parsed date the window is applied by position. When the date window
// is empty the last N records are returned instead.
func FilterPeriod(t *Table, period Period, now time.Time) *Table {
	if t.Len() == 0 {
		return t
	}
	days := period.Days()
	if days == 0 {
		return t
	}
	if t.FallbackCount() == t.Len() {
		return t.WithRecords(tail(t.Records, days))
	}

	cutoff := startOfDay(now).AddDate(0, 0, -days)
	kept := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if !r.DateParsed.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return t.WithRecords(tail(t.Records, days))
	}
	return t.WithRecords(kept)
}

func tail(records []Record, n int) []Record {
	if n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
