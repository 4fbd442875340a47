package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"signaldash/internal/exporter"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		out    string
		format string
		bom    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the period's signal table to a CSV or XLSX file",
		Long: `Write the period's signal table to a file. XLSX exports add a Summary
sheet with the statistics and insights.

The format defaults to the extension of --out, then csv. Without --out the
file is named signals_<period>_<yyyymmdd>.<format> in the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			report, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = f.FileName(string(report.Period), report.GeneratedAt)
			}

			switch f {
			case exporter.FormatXLSX:
				err = exporter.WriteXLSXFile(out, exporter.Workbook{
					Period:      string(report.Period),
					GeneratedAt: report.GeneratedAt,
					Table:       report.Table,
					Stats:       report.Stats,
					Insights:    report.Insights,
				})
			default:
				err = exporter.WriteCSVFile(out, report.Table, exporter.WriteOptions{BOMPrefix: bom})
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", out, err)
			}
			if report.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), report.Warning)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(report.Table.Rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file path")
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx")
	cmd.Flags().BoolVar(&bom, "bom", false, "prefix CSV output with a UTF-8 BOM")
	return cmd
}
