package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "signaldash/internal/errors"
	"signaldash/internal/exporter"
	"signaldash/internal/middleware"
	"signaldash/internal/services"
	"signaldash/internal/signals"
	api "signaldash/pkg/contracts/api/v1"
)

// DashboardService builds period reports.
type DashboardService interface {
	Load(ctx context.Context, period signals.Period) (*services.Report, error)
}

// DashboardHandler serves the dashboard views and table exports.
type DashboardHandler struct {
	service       DashboardService
	validator     *middleware.RequestValidator
	defaultPeriod signals.Period
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. Requests without a period
// use defaultPeriod.
func NewDashboardHandler(service DashboardService, defaultPeriod signals.Period, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if defaultPeriod == "" {
		defaultPeriod = signals.PeriodAll
	}
	return &DashboardHandler{
		service:       service,
		validator:     middleware.NewRequestValidator(),
		defaultPeriod: defaultPeriod,
		logger:        logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:  errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetDashboard)
		r.Get("/stats", h.GetStats)
		r.Get("/table", h.GetTable)
		r.Get("/series", h.GetSeries)
		r.Get("/insights", h.GetInsights)
	})
	r.Get("/export", h.Export)

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, api.SuccessWithWarning(report, report.Warning))
}

// GetStats handles GET /api/dashboard/stats. Data is null when the sheet has
// no TP or SL column.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, api.SuccessWithWarning(report.Stats, report.Warning))
}

// GetTable handles GET /api/dashboard/table
func (h *DashboardHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, api.SuccessWithWarning(report.Table, report.Warning))
}

// GetSeries handles GET /api/dashboard/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, api.SuccessWithWarning(report.Series, report.Warning))
}

// GetInsights handles GET /api/dashboard/insights
func (h *DashboardHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, api.SuccessWithWarning(report.Insights, report.Warning))
}

// Export handles GET /api/dashboard/export?format=csv|xlsx&period=...&bom=true
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validator.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	period, err := h.period(req.Period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	report, err := h.service.Load(r.Context(), period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	switch format {
	case exporter.FormatXLSX:
		err = exporter.WriteXLSX(&buf, exporter.Workbook{
			Period:      string(report.Period),
			GeneratedAt: report.GeneratedAt,
			Table:       report.Table,
			Stats:       report.Stats,
			Insights:    report.Insights,
		})
	default:
		err = exporter.WriteCSV(&buf, report.Table, exporter.WriteOptions{BOMPrefix: req.BOM})
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError("Failed to render export", err))
		return
	}

	filename := format.FileName(string(report.Period), report.GeneratedAt)
	h.logger.InfoContext(r.Context(), "table exported",
		slog.String("format", string(format)),
		slog.String("period", string(report.Period)),
		slog.Int("rows", len(report.Table.Rows)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Last-Modified", report.GeneratedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// load validates the period query and loads its report, writing the error
// response itself on failure.
func (h *DashboardHandler) load(w http.ResponseWriter, r *http.Request) (*services.Report, bool) {
	var req api.DashboardRequest
	if err := h.validator.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	period, err := h.period(req.Period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	start := time.Now()
	report, err := h.service.Load(r.Context(), period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	h.logger.DebugContext(r.Context(), "report served",
		slog.String("period", string(period)),
		slog.Bool("empty", report.Empty),
		slog.Duration("duration", time.Since(start)))
	return report, true
}

func (h *DashboardHandler) period(raw string) (signals.Period, error) {
	if raw == "" {
		return h.defaultPeriod, nil
	}
	period, err := signals.ParsePeriod(raw)
	if err != nil {
		return "", apierrors.ErrValidation("period", err.Error())
	}
	return period, nil
}
