package signals

// Tier labels used by Insights.
const (
	PerformanceExcellent = "excellent"
	PerformanceGood      = "good"
	PerformancePoor      = "needs_improvement"

	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	CompletionHigh = "high"
	CompletionGood = "good"
	CompletionLow  = "low"
)

// Insights is a qualitative reading of a period's statistics.
type Insights struct {
	Performance string `json:"performance"`
	Trend       string `json:"trend"`
	Completion  string `json:"completion"`
}

// DeriveInsights grades stats and the win-rate trend of t.
func DeriveInsights(stats Statistics, t *Table) Insights {
	in := Insights{Trend: TrendStable}

	switch {
	case stats.OverallWinrate >= WinrateTarget:
		in.Performance = PerformanceExcellent
	case stats.OverallWinrate >= 60:
		in.Performance = PerformanceGood
	default:
		in.Performance = PerformancePoor
	}

	if t.Len() >= 3 && t.Has(FieldWinratePct) {
		all := make([]float64, len(t.Records))
		for i, r := range t.Records {
			all[i] = r.WinrateNum
		}
		if mean(all[len(all)-3:]) > mean(all) {
			in.Trend = TrendImproving
		} else {
			in.Trend = TrendDeclining
		}
	}

	switch {
	case stats.CompletionRate >= 90:
		in.Completion = CompletionHigh
	case stats.CompletionRate >= 70:
		in.Completion = CompletionGood
	default:
		in.Completion = CompletionLow
	}
	return in
}
