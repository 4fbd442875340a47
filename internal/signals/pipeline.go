package signals

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNoData means the sheet has no header or no non-empty data rows.
	ErrNoData = errors.New("no data rows")
	// ErrInvalidPeriod is returned by ParsePeriod for unknown period names.
	ErrInvalidPeriod = errors.New("invalid period")
)

// leadingCells is how many leading cells decide whether a row is empty.
const leadingCells = 6

// Cleaner turns a raw sheet grid into a sorted Table.
type Cleaner struct {
	Rules []ColumnRule
	Dates []DateStrategy
	Now   func() time.Time
}

// NewCleaner returns a Cleaner with the default rules and date strategies.
// A nil clock means time.Now.
func NewCleaner(now func() time.Time) *Cleaner {
	if now == nil {
		now = time.Now
	}
	return &Cleaner{Rules: DefaultColumnRules, Dates: DefaultDateStrategies, Now: now}
}

// Clean normalizes, coerces and dates grid, whose first row is the header.
// It returns ErrNoData when fewer than two rows are present or every data row is empty.
func (c *Cleaner) Clean(grid [][]string) (*Table, error) {
	if len(grid) < 2 {
		return nil, ErrNoData
	}
	schema := NormalizeColumns(grid[0], c.Rules)

	rows := DataRows(grid[1:], len(schema.Headers))
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	now := c.Now()
	t := &Table{Schema: schema, Records: make([]Record, len(rows))}
	for i, row := range rows {
		r := coerceRecord(row, schema)
		r.DateParsed, r.DateSource = ResolveDate(r.DateText, i, len(rows), now, c.Dates)
		r.DateDisplay = r.DateParsed.Format(DisplayLayout)
		t.Records[i] = r
	}

	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].DateParsed.Before(t.Records[j].DateParsed)
	})
	return t, nil
}

// DataRows squares rows to width and drops every row whose leading cells are all blank.
func DataRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		sq := make([]string, width)
		copy(sq, row)
		out = append(out, sq)
	}
	return out
}

func isBlankRow(row []string) bool {
	n := len(row)
	if n > leadingCells {
		n = leadingCells
	}
	for _, c := range row[:n] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
