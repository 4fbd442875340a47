package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"signaldash/internal/services"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print period statistics and insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"period":   report.Period,
					"warning":  report.Warning,
					"stats":    report.Stats,
					"insights": report.Insights,
				})
			}
			return writeStats(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func writeStats(out io.Writer, report *services.Report) error {
	if report.Warning != "" {
		fmt.Fprintln(out, report.Warning)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Period\t%s\n", report.Period)
	fmt.Fprintf(w, "Rows\t%d of %d\n", report.RowsInPeriod, report.RowsLoaded)
	if report.Stats == nil {
		fmt.Fprintln(w, "Statistics\tunavailable (TP or SL column missing)")
		return w.Flush()
	}
	s := report.Stats
	fmt.Fprintf(w, "Total TP\t%d\n", s.TotalTP)
	fmt.Fprintf(w, "Total SL\t%d\n", s.TotalSL)
	fmt.Fprintf(w, "Overall Winrate\t%.2f%%\n", s.OverallWinrate)
	fmt.Fprintf(w, "Total Signals\t%d\n", s.TotalSignals)
	fmt.Fprintf(w, "Completion Rate\t%.2f%%\n", s.CompletionRate)
	if in := report.Insights; in != nil {
		fmt.Fprintf(w, "Performance\t%s\n", in.Performance)
		fmt.Fprintf(w, "Trend\t%s\n", in.Trend)
		fmt.Fprintf(w, "Completion\t%s\n", in.Completion)
	}
	return w.Flush()
}
