package exporter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"signaldash/internal/signals"
)

// Sheet names of an XLSX export.
const (
	RecordsSheet = "Records"
	SummarySheet = "Summary"
)

// Workbook is the content of an XLSX export.
type Workbook struct {
	Period      string
	GeneratedAt time.Time
	Table       signals.DisplayTable
	Stats       *signals.Statistics
	Insights    *signals.Insights
}

// WriteXLSX renders wb as a workbook with Records and Summary sheets.
func WriteXLSX(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("failed to name records sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRecords(f, wb.Table, bold); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummary(f, wb, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteXLSXFile writes wb to path, creating parent directories.
func WriteXLSXFile(path string, wb Workbook) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, wb) })
}

func writeRecords(f *excelize.File, t signals.DisplayTable, headerStyle int) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(RecordsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(RecordsSheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.Atoi(v); err == nil {
				values[j] = n
				continue
			}
			values[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(RecordsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, wb Workbook, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Period", wb.Period},
		{"Generated", wb.GeneratedAt.Format(time.RFC3339)},
		{"Rows", len(wb.Table.Rows)},
	}
	if s := wb.Stats; s != nil {
		rows = append(rows,
			[]interface{}{"Total TP", s.TotalTP},
			[]interface{}{"Total SL", s.TotalSL},
			[]interface{}{"Overall Winrate %", formatFloat(s.OverallWinrate)},
			[]interface{}{"Total Signals", s.TotalSignals},
			[]interface{}{"Completion Rate %", formatFloat(s.CompletionRate)},
		)
	}
	if in := wb.Insights; in != nil {
		rows = append(rows,
			[]interface{}{"Performance", in.Performance},
			[]interface{}{"Trend", in.Trend},
			[]interface{}{"Completion", in.Completion},
		)
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}
