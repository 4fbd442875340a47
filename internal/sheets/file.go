package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CSVSource reads a CSV export of the worksheet.
type CSVSource struct {
	Path string
}

// Name identifies the source in logs and errors.
func (s CSVSource) Name() string { return "csv" }

// Connect checks that Path is a readable CSV file.
func (s CSVSource) Connect(ctx context.Context) error {
	return validateFile(s.Path, ".csv", ".txt")
}

// Fetch reads every record of the file. A leading UTF-8 BOM is dropped.
func (s CSVSource) Fetch(ctx context.Context) ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, s.Path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// XLSXSource reads one worksheet of an Excel workbook. An empty Sheet means
// the first sheet in the workbook.
type XLSXSource struct {
	Path  string
	Sheet string
}

// Name identifies the source in logs and errors.
func (s XLSXSource) Name() string { return "xlsx" }

// Connect checks that Path is a readable workbook.
func (s XLSXSource) Connect(ctx context.Context) error {
	return validateFile(s.Path, ".xlsx", ".xlsm")
}

// Fetch reads the configured sheet, or the first one.
func (s XLSXSource) Fetch(ctx context.Context) ([][]string, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrFetch, s.Path)
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrFetch, s.Path, sheet, err)
	}
	return rows, nil
}
