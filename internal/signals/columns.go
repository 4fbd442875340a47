package signals

import "strings"

// ColumnRule classifies a lower-cased, trimmed header as a canonical field.
type ColumnRule struct {
	Field Field
	Match func(header string) bool
}

func containsAny(keywords ...string) func(string) bool {
	return func(h string) bool {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return true
			}
		}
		return false
	}
}

func equals(want string) func(string) bool {
	return func(h string) bool { return h == want }
}

// DefaultColumnRules is evaluated in order; the first matching rule classifies a header.
var DefaultColumnRules = []ColumnRule{
	{Field: FieldDate, Match: containsAny("date", "tanggal", "tgl")},
	{Field: FieldTotalSignal, Match: containsAny("total", "signal")},
	{Field: FieldFinished, Match: containsAny("finish")},
	{Field: FieldTP, Match: equals("tp")},
	{Field: FieldSL, Match: equals("sl")},
	{Field: FieldWinratePct, Match: containsAny("winrate", "win_rate", "win rate")},
}

// NormalizeColumns builds the schema for the given headers. Headers are trimmed;
// for each canonical field the leftmost classified header wins.
func NormalizeColumns(headers []string, rules []ColumnRule) *Schema {
	if rules == nil {
		rules = DefaultColumnRules
	}
	s := &Schema{
		Headers: make([]string, len(headers)),
		columns: make(map[Field]int, len(AllFields)),
	}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		s.Headers[i] = h
		key := strings.ToLower(h)
		for _, rule := range rules {
			if !rule.Match(key) {
				continue
			}
			if _, taken := s.columns[rule.Field]; !taken {
				s.columns[rule.Field] = i
			}
			break
		}
	}
	return s
}
