package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "signaldash/internal/errors"
	"signaldash/internal/exporter"
	"signaldash/internal/services"
	"signaldash/internal/shared/testutil"
	"signaldash/internal/signals"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func sampleReport(period signals.Period) *services.Report {
	return &services.Report{
		Period: period,
		Source: "mock",
		Stats: &signals.Statistics{
			TotalTP: 56, TotalSL: 24, OverallWinrate: 70, TotalSignals: 88, CompletionRate: 90.91,
		},
		Insights: &signals.Insights{
			Performance: signals.PerformanceExcellent,
			Trend:       signals.TrendStable,
			Completion:  signals.CompletionHigh,
		},
		Series: signals.Series{Labels: []string{"Mar 14", "Mar 15"}, WinrateTarget: signals.WinrateTarget},
		Table: signals.DisplayTable{
			Columns: []string{"Date", "TP", "SL"},
			Rows:    [][]string{{"2024-03-14", "7", "3"}, {"2024-03-15", "7", "3"}},
		},
		RowsLoaded:   2,
		RowsInPeriod: 2,
		GeneratedAt:  testNow,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestDashboardHandler_Views(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		period   signals.Period
		checkKey string
	}{
		{name: "full report uses default period", path: "/api/dashboard", period: signals.PeriodWeek, checkKey: "stats"},
		{name: "stats", path: "/api/dashboard/stats?period=month", period: signals.PeriodMonth, checkKey: "totalTp"},
		{name: "table", path: "/api/dashboard/table?period=all", period: signals.PeriodAll, checkKey: "columns"},
		{name: "series", path: "/api/dashboard/series?period=WEEK", period: signals.PeriodWeek, checkKey: "labels"},
		{name: "insights", path: "/api/dashboard/insights?period=month", period: signals.PeriodMonth, checkKey: "performance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Load", tt.period).Return(sampleReport(tt.period), nil)
			router, _ := newTestRouter(t, svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			body := decodeBody(t, rec)
			assert.Equal(t, "success", body["status"])
			assert.NotContains(t, body, "warning")
			data, ok := body["data"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, data, tt.checkKey)
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_EmptyReportCarriesWarning(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Load", signals.PeriodWeek).Return(&services.Report{
		Period:  signals.PeriodWeek,
		Empty:   true,
		Warning: services.NoDataWarning,
		Table:   signals.BuildDisplay(nil),
	}, nil)
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, services.NoDataWarning, body["warning"])
	assert.Nil(t, body["data"])
}

func TestDashboardHandler_InvalidPeriod(t *testing.T) {
	svc := new(MockDashboardService)
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?period=year", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	svc.AssertNotCalled(t, "Load", mock.Anything)
}

func TestDashboardHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantCategory string
	}{
		{
			name:         "unreachable sheet",
			err:          apierrors.NewNetworkError("Failed to connect to Google Sheets", errors.New("dial tcp")),
			wantStatus:   http.StatusBadGateway,
			wantCategory: "NETWORK",
		},
		{
			name:         "missing credentials",
			err:          apierrors.NewConfigError("Google Sheets credentials not found", nil),
			wantStatus:   http.StatusServiceUnavailable,
			wantCategory: "CONFIG",
		},
		{
			name:         "processing panic",
			err:          apierrors.NewInternalError("Error processing data: runtime.boundsError", nil),
			wantStatus:   http.StatusInternalServerError,
			wantCategory: "INTERNAL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Load", signals.PeriodAll).Return(nil, tt.err)
			router, _ := newTestRouter(t, svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?period=all", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantCategory, body["category"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.NotEmpty(t, body["trace_id"])
		})
	}
}

func TestDashboardHandler_ExportCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Load", signals.PeriodWeek).Return(sampleReport(signals.PeriodWeek), nil)
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/export?bom=true", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, exporter.FormatCSV.ContentType(), rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="signals_week_20240315.csv"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "\ufeff"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	assert.Equal(t, []string{"Date,TP,SL", "2024-03-14,7,3", "2024-03-15,7,3"}, lines)
}

func TestDashboardHandler_ExportXLSX(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Load", signals.PeriodMonth).Return(sampleReport(signals.PeriodMonth), nil)
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/export?format=xlsx&period=month", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, exporter.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "signals_month_20240315.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{exporter.RecordsSheet, exporter.SummarySheet}, f.GetSheetList())
	rows, err := f.GetRows(exporter.RecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "TP", "SL"}, rows[0])
}

func TestDashboardHandler_ExportRejectsUnknownFormat(t *testing.T) {
	svc := new(MockDashboardService)
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/export?format=pdf", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Load", mock.Anything)
}

func TestDashboardHandler_WithDashboardService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	source := &testutil.StaticSource{Grid: testutil.SignalGrid(testNow, 20, 7, 3)}
	svc := services.NewDashboardService(source, logger, services.WithClock(func() time.Time { return testNow }))
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats?period=week", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Status string             `json:"status"`
		Data   signals.Statistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 56, body.Data.TotalTP)
	assert.Equal(t, 24, body.Data.TotalSL)
	assert.Equal(t, 88, body.Data.TotalSignals)
}

func TestDashboardHandler_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, new(MockDashboardService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, decodeBody(t, rec)["type"])
}
