package signals

// WinrateTarget is the reference line drawn on the win-rate chart.
const WinrateTarget = 70.0

// Series holds chart-ready columns aligned on Labels. Slices whose source
// column is missing are nil.
type Series struct {
	Labels         []string  `json:"labels"`
	Winrate        []float64 `json:"winrate,omitempty"`
	WinrateAverage *float64  `json:"winrateAverage,omitempty"`
	WinrateTarget  float64   `json:"winrateTarget"`
	TP             []int     `json:"tp,omitempty"`
	SL             []int     `json:"sl,omitempty"`
	CumulativeTP   []int     `json:"cumulativeTp,omitempty"`
	CumulativeSL   []int     `json:"cumulativeSl,omitempty"`
	DailySignals   []int     `json:"dailySignals,omitempty"`
}

// BuildSeries projects t onto chart series.
func BuildSeries(t *Table) Series {
	s := Series{WinrateTarget: WinrateTarget, Labels: make([]string, 0, t.Len())}
	if t.Len() == 0 {
		return s
	}
	for _, r := range t.Records {
		s.Labels = append(s.Labels, r.DateDisplay)
	}

	if t.Has(FieldWinratePct) {
		s.Winrate = make([]float64, len(t.Records))
		for i, r := range t.Records {
			s.Winrate[i] = r.WinrateNum
		}
		avg := mean(s.Winrate)
		s.WinrateAverage = &avg
	}

	if t.Has(FieldTP) && t.Has(FieldSL) {
		n := len(t.Records)
		s.TP, s.SL = make([]int, n), make([]int, n)
		s.CumulativeTP, s.CumulativeSL = make([]int, n), make([]int, n)
		var tp, sl int
		for i, r := range t.Records {
			s.TP[i], s.SL[i] = r.TP, r.SL
			tp += r.TP
			sl += r.SL
			s.CumulativeTP[i], s.CumulativeSL[i] = tp, sl
		}
	}

	if t.Has(FieldTotalSignal) {
		s.DailySignals = make([]int, len(t.Records))
		for i, r := range t.Records {
			s.DailySignals[i] = r.TotalSignal
		}
	}
	return s
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
