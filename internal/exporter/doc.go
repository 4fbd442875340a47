// Package exporter writes dashboard tables out as files.
//
// CSV output mirrors the display table, optionally prefixed with a UTF-8 BOM
// so spreadsheet programs detect the encoding. XLSX output holds a Records
// sheet with the same table and a Summary sheet with the period statistics
// and insights.
//
//	err := exporter.WriteCSV(w, report.Table, exporter.WriteOptions{BOMPrefix: true})
//	err = exporter.WriteXLSX(w, exporter.Workbook{Period: "week", Table: report.Table, Stats: report.Stats})
package exporter
