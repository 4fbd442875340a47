package signals

import (
	"strconv"
	"time"
)

// Field is a canonical column of the signal sheet.
type Field string

const (
	FieldDate        Field = "date"
	FieldTotalSignal Field = "totalSignal"
	FieldFinished    Field = "finished"
	FieldTP          Field = "tp"
	FieldSL          Field = "sl"
	FieldWinratePct  Field = "winratePct"
)

// AllFields lists the canonical fields in display order.
var AllFields = []Field{FieldDate, FieldTotalSignal, FieldFinished, FieldTP, FieldSL, FieldWinratePct}

// DisplayName returns the column title used in tables and exports.
func (f Field) DisplayName() string {
	switch f {
	case FieldDate:
		return "Date"
	case FieldTotalSignal:
		return "Total_Signal"
	case FieldFinished:
		return "Finished"
	case FieldTP:
		return "TP"
	case FieldSL:
		return "SL"
	case FieldWinratePct:
		return "Winrate_pct"
	}
	return string(f)
}

// DateSource records which strategy produced a record's date.
type DateSource string

const (
	DateSourceRange    DateSource = "range"
	DateSourceISO      DateSource = "iso"
	DateSourceUSSlash  DateSource = "us_slash"
	DateSourceUSDash   DateSource = "us_dash"
	DateSourceFreeText DateSource = "free_text"
	DateSourceFallback DateSource = "fallback"
)

// Schema maps canonical fields to header positions. It is computed once per load.
type Schema struct {
	Headers []string
	columns map[Field]int
}

// Has reports whether the sheet carries the given canonical column.
func (s *Schema) Has(f Field) bool {
	if s == nil {
		return false
	}
	_, ok := s.columns[f]
	return ok
}

// Column returns the header index mapped to f.
func (s *Schema) Column(f Field) (int, bool) {
	if s == nil {
		return 0, false
	}
	idx, ok := s.columns[f]
	return idx, ok
}

// Fields returns the mapped canonical fields in display order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Record is one cleaned row of the signal sheet.
type Record struct {
	Raw []string `json:"-"`

	DateText   string `json:"dateText"`
	WinrateRaw string `json:"winratePct"`

	TotalSignal int     `json:"totalSignal"`
	Finished    int     `json:"finished"`
	TP          int     `json:"tp"`
	SL          int     `json:"sl"`
	WinrateNum  float64 `json:"winrateNum"`

	DateParsed  time.Time  `json:"dateParsed"`
	DateDisplay string     `json:"dateDisplay"`
	DateSource  DateSource `json:"dateSource"`
}

// Value renders the cleaned value of a canonical field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldDate:
		return r.DateDisplay
	case FieldTotalSignal:
		return strconv.Itoa(r.TotalSignal)
	case FieldFinished:
		return strconv.Itoa(r.Finished)
	case FieldTP:
		return strconv.Itoa(r.TP)
	case FieldSL:
		return strconv.Itoa(r.SL)
	case FieldWinratePct:
		return strconv.FormatFloat(r.WinrateNum, 'f', -1, 64) + "%"
	}
	return ""
}

// Table is the ordered, cleaned collection of records produced by a load.
type Table struct {
	Schema  *Schema  `json:"-"`
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Has reports whether the table's schema carries f.
func (t *Table) Has(f Field) bool {
	return t != nil && t.Schema.Has(f)
}

// FallbackCount returns how many records carry a fabricated date.
func (t *Table) FallbackCount() int {
	n := 0
	for _, r := range t.Records {
		if r.DateSource == DateSourceFallback {
			n++
		}
	}
	return n
}

// WithRecords returns a table sharing t's schema over a different record slice.
func (t *Table) WithRecords(records []Record) *Table {
	return &Table{Schema: t.Schema, Records: records}
}

// Grid renders the table back into a header-first grid with cleaned values in
// the canonical columns and raw text everywhere else.
func (t *Table) Grid() [][]string {
	grid := make([][]string, 0, len(t.Records)+1)
	grid = append(grid, append([]string(nil), t.Schema.Headers...))
	for _, r := range t.Records {
		row := make([]string, len(t.Schema.Headers))
		copy(row, r.Raw)
		for _, f := range AllFields {
			if idx, ok := t.Schema.Column(f); ok {
				row[idx] = r.Value(f)
			}
		}
		grid = append(grid, row)
	}
	return grid
}
