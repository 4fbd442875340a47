package signals

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CoerceCount keeps only the decimal digits of s and parses them. Anything
// unparseable yields 0.
func CoerceCount(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// CoerceWinrate parses a percentage such as "87.5%" into [0,100].
func CoerceWinrate(s string) float64 {
	s = strings.TrimFunc(strings.ReplaceAll(s, "%", ""), unicode.IsSpace)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clampPercent(v)
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func cell(row []string, s *Schema, f Field) string {
	idx, ok := s.Column(f)
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// coerceRecord fills the numeric fields of a record from its raw cells.
func coerceRecord(row []string, s *Schema) Record {
	r := Record{
		Raw:        row,
		DateText:   strings.TrimSpace(cell(row, s, FieldDate)),
		WinrateRaw: cell(row, s, FieldWinratePct),
	}
	r.TotalSignal = CoerceCount(cell(row, s, FieldTotalSignal))
	r.Finished = CoerceCount(cell(row, s, FieldFinished))
	r.TP = CoerceCount(cell(row, s, FieldTP))
	r.SL = CoerceCount(cell(row, s, FieldSL))
	r.WinrateNum = CoerceWinrate(r.WinrateRaw)
	return r
}
