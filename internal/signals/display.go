package signals

// DisplayTable is a rectangular, string-valued view of a table.
type DisplayTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// BuildDisplay renders the canonical columns of t in display order. When the
// sheet has none of them the raw headers and cells are shown instead.
func BuildDisplay(t *Table) DisplayTable {
	if t == nil || t.Schema == nil {
		return DisplayTable{Columns: []string{}, Rows: [][]string{}}
	}
	fields := t.Schema.Fields()
	if len(fields) == 0 {
		rows := make([][]string, len(t.Records))
		for i, r := range t.Records {
			rows[i] = append([]string(nil), r.Raw...)
		}
		return DisplayTable{Columns: append([]string(nil), t.Schema.Headers...), Rows: rows}
	}

	d := DisplayTable{Columns: make([]string, len(fields)), Rows: make([][]string, len(t.Records))}
	for i, f := range fields {
		d.Columns[i] = f.DisplayName()
	}
	for i, r := range t.Records {
		row := make([]string, len(fields))
		for j, f := range fields {
			if f == FieldWinratePct {
				row[j] = r.WinrateRaw
				continue
			}
			row[j] = r.Value(f)
		}
		d.Rows[i] = row
	}
	return d
}
