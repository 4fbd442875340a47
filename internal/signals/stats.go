package signals

// Statistics summarises a period of signal records.
type Statistics struct {
	TotalTP        int     `json:"totalTp"`
	TotalSL        int     `json:"totalSl"`
	OverallWinrate float64 `json:"overallWinrate"`
	TotalSignals   int     `json:"totalSignals"`
	CompletionRate float64 `json:"completionRate"`
}

// AsMap returns the statistics keyed by name.
func (s Statistics) AsMap() map[string]float64 {
	return map[string]float64{
		"totalTp":        float64(s.TotalTP),
		"totalSl":        float64(s.TotalSL),
		"overallWinrate": s.OverallWinrate,
		"totalSignals":   float64(s.TotalSignals),
		"completionRate": s.CompletionRate,
	}
}

// ComputeStatistics aggregates t. It reports false when the table is empty or
// lacks either the TP or the SL column.
func ComputeStatistics(t *Table) (Statistics, bool) {
	if t.Len() == 0 || !t.Has(FieldTP) || !t.Has(FieldSL) {
		return Statistics{}, false
	}

	var s Statistics
	var signals int
	for _, r := range t.Records {
		s.TotalTP += r.TP
		s.TotalSL += r.SL
		signals += r.TotalSignal
	}

	finished := s.TotalTP + s.TotalSL
	if finished > 0 {
		s.OverallWinrate = clampPercent(100 * float64(s.TotalTP) / float64(finished))
	}

	if t.Has(FieldTotalSignal) {
		s.TotalSignals = signals
		if signals > 0 {
			s.CompletionRate = clampPercent(100 * float64(finished) / float64(signals))
		}
	} else {
		s.TotalSignals = finished
		s.CompletionRate = 100
	}
	return s, true
}
