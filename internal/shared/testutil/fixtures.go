package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// SignalHeader is the header row of a well-formed signal sheet.
var SignalHeader = []string{"Date", "Total Signal", "Finished", "TP", "SL", "Winrate"}

// SignalGrid builds a sheet with one row per day ending at end, each row
// carrying tp take-profits and sl stop-losses out of tp+sl+1 signals.
func SignalGrid(end time.Time, days, tp, sl int) [][]string {
	grid := [][]string{append([]string(nil), SignalHeader...)}
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		total := tp + sl + 1
		winrate := 0.0
		if tp+sl > 0 {
			winrate = 100 * float64(tp) / float64(tp+sl)
		}
		grid = append(grid, []string{
			d.Format("2006-01-02"),
			fmt.Sprint(total),
			fmt.Sprint(tp + sl),
			fmt.Sprint(tp),
			fmt.Sprint(sl),
			fmt.Sprintf("%.1f%%", winrate),
		})
	}
	return grid
}

// StaticSource is an in-memory row source.
type StaticSource struct {
	Grid  [][]string
	Err   error
	Delay time.Duration
	calls atomic.Int32
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fetch(ctx context.Context) ([][]string, error) {
	s.calls.Add(1)
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Grid, nil
}

// Calls reports how many times Fetch ran.
func (s *StaticSource) Calls() int { return int(s.calls.Load()) }
