package signals

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayLayout is the canonical display form of a resolved date.
const DisplayLayout = "2006-01-02"

// DateStrategy attempts to read a calendar date from free text.
type DateStrategy struct {
	Source DateSource
	Parse  func(text string, now time.Time) (time.Time, bool)
}

var (
	rangePattern   = regexp.MustCompile(`(\d{2})/(\d{2})-(\d{2})/(\d{2})`)
	isoPattern     = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	usSlashPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	usDashPattern  = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
)

// DefaultDateStrategies are tried in order; the first success wins. Rows no
// strategy can read receive a positional fallback date.
var DefaultDateStrategies = []DateStrategy{
	{Source: DateSourceRange, Parse: parseRange},
	{Source: DateSourceISO, Parse: parseYMD},
	{Source: DateSourceUSSlash, Parse: matchMDY(usSlashPattern)},
	{Source: DateSourceUSDash, Parse: matchMDY(usDashPattern)},
	{Source: DateSourceFreeText, Parse: parseFreeText},
}

// calendarDate builds a date and rejects values time.Date would normalise,
// such as February 30th. Years before 1 and the zero time are rejected.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.IsZero() || d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func atoi(parts ...string) []int {
	out := make([]int, len(parts))
	for i, p := range parts {
		out[i], _ = strconv.Atoi(p)
	}
	return out
}

// parseRange reads "MM/DD-MM/DD" and keeps the end of the range in the current year.
func parseRange(text string, now time.Time) (time.Time, bool) {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n := atoi(m[3], m[4])
	return calendarDate(now.Year(), n[0], n[1], now.Location())
}

func parseYMD(text string, now time.Time) (time.Time, bool) {
	m := isoPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n := atoi(m[1], m[2], m[3])
	return calendarDate(n[0], n[1], n[2], now.Location())
}

func matchMDY(re *regexp.Regexp) func(string, time.Time) (time.Time, bool) {
	return func(text string, now time.Time) (time.Time, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return time.Time{}, false
		}
		n := atoi(m[1], m[2], m[3])
		return calendarDate(n[2], n[0], n[1], now.Location())
	}
}

// parseFreeText reads anything dateparse understands. Text without a year,
// such as "6/10" or "June 3", takes the current year.
func parseFreeText(text string, now time.Time) (time.Time, bool) {
	t, err := dateparse.ParseIn(text, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	t = t.In(now.Location())
	year := t.Year()
	if year == 0 {
		year = now.Year()
	}
	return calendarDate(year, int(t.Month()), t.Day(), now.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FallbackDate is the positional date given to a row whose text could not be
// read: today minus the number of rows that follow it.
func FallbackDate(now time.Time, idx, total int) time.Time {
	return startOfDay(now).AddDate(0, 0, -(total - idx - 1))
}

// ResolveDate runs the strategies over text. Empty text always falls back.
func ResolveDate(text string, idx, total int, now time.Time, strategies []DateStrategy) (time.Time, DateSource) {
	if text != "" {
		for _, s := range strategies {
			if d, ok := s.Parse(text, now); ok {
				return d, s.Source
			}
		}
	}
	return FallbackDate(now, idx, total), DateSourceFallback
}
