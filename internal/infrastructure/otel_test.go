package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"signaldash/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_MetricsOnly(t *testing.T) {
	providers, err := InitializeOTel(NewOTelConfig(config.ObservabilityConfig{
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, "test"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(NewOTelConfig(config.ObservabilityConfig{TraceExporter: "none"}, "test"), discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter)

	metrics, err := NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordLoad(context.Background(), "csv", "success", time.Second)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "jaeger"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestDashboardMetrics_Exported(t *testing.T) {
	providers, err := InitializeOTel(NewOTelConfig(config.ObservabilityConfig{
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, "test"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordLoad(ctx, "google_sheets", "success", 250*time.Millisecond)
	metrics.RecordRows(ctx, "google_sheets", 42, 2)
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/api/dashboard", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dashboard_loads_total")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, "dashboard_rows_loaded")
	assert.Contains(t, body, "dashboard_fallback_dates_total")
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		m.RecordLoad(context.Background(), "csv", "empty", 0)
		m.RecordRows(context.Background(), "csv", 0, 0)
		m.RecordHTTPRequest(context.Background(), "GET", "/", 200, 0)
		m.TrackActive(context.Background(), 1)
	})
}

func TestTraceIDFromContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "load")
	defer span.End()

	id := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), id)
	assert.Equal(t, id, GetTraceID(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
