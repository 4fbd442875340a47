package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"signaldash/internal/exporter"
	"signaldash/internal/shared/testutil"
	"signaldash/internal/signals"
	"signaldash/pkg/contracts"
)

// fixture writes a 20-day signal CSV and an empty config file.
func fixture(t *testing.T) (dir, csvPath, configPath string) {
	t.Helper()
	dir = t.TempDir()
	grid := testutil.SignalGrid(time.Now().UTC(), 20, 7, 3)
	csvPath = filepath.Join(dir, "signals.csv")
	require.NoError(t, exporter.WriteCSVFile(csvPath, signals.DisplayTable{Columns: grid[0], Rows: grid[1:]}, exporter.WriteOptions{}))
	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: error\n"), 0o644))
	return dir, csvPath, configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Log(errOut.String())
	return out.String(), err
}

func TestStatsCmd(t *testing.T) {
	_, csvPath, configPath := fixture(t)

	out, err := run(t, "stats", "--config", configPath, "--file", csvPath, "--period", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Total TP")
	assert.Contains(t, out, "140")
	assert.Contains(t, out, "70.00%")
	assert.Contains(t, out, "Performance")
}

func TestStatsCmd_JSON(t *testing.T) {
	_, csvPath, configPath := fixture(t)

	out, err := run(t, "stats", "--config", configPath, "--source", "csv", "--file", csvPath, "--period", "all", "--json")
	require.NoError(t, err)

	var body struct {
		Period signals.Period     `json:"period"`
		Stats  signals.Statistics `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, signals.PeriodAll, body.Period)
	assert.Equal(t, 60, body.Stats.TotalSL)
	assert.Equal(t, 220, body.Stats.TotalSignals)
}

func TestStatsCmd_EmptySheet(t *testing.T) {
	dir, _, configPath := fixture(t)
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(strings.Join(testutil.SignalHeader, ",")+"\n"), 0o644))

	out, err := run(t, "stats", "--config", configPath, "--file", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "No data available")
}

func TestStatsCmd_InvalidPeriod(t *testing.T) {
	_, csvPath, configPath := fixture(t)

	_, err := run(t, "stats", "--config", configPath, "--file", csvPath, "--period", "year")
	assert.ErrorIs(t, err, signals.ErrInvalidPeriod)
}

func TestTableCmd(t *testing.T) {
	_, csvPath, configPath := fixture(t)

	out, err := run(t, "table", "--config", configPath, "--file", csvPath, "--period", "all")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 21)
	assert.Contains(t, lines[0], "TP")
}

func TestExportCmd(t *testing.T) {
	dir, csvPath, configPath := fixture(t)

	t.Run("csv with bom", func(t *testing.T) {
		target := filepath.Join(dir, "out", "week.csv")
		out, err := run(t, "export", "--config", configPath, "--file", csvPath, "--period", "all", "--out", target, "--bom")
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote 20 rows")

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	})

	t.Run("xlsx from extension", func(t *testing.T) {
		target := filepath.Join(dir, "signals.xlsx")
		_, err := run(t, "export", "--config", configPath, "--file", csvPath, "--period", "all", "--out", target)
		require.NoError(t, err)

		f, err := excelize.OpenFile(target)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{exporter.RecordsSheet, exporter.SummarySheet}, f.GetSheetList())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "export", "--config", configPath, "--file", csvPath, "--format", "pdf")
		assert.Error(t, err)
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())
}
