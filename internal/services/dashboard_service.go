package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	apierrors "signaldash/internal/errors"
	"signaldash/internal/infrastructure"
	"signaldash/internal/security"
	"signaldash/internal/sheets"
	"signaldash/internal/signals"
)

// NoDataWarning is the report warning shown when the sheet holds no usable rows.
const NoDataWarning = "No data available. Please check your Google Sheet."

// Report is everything the dashboard renders for one period.
type Report struct {
	Period        signals.Period        `json:"period"`
	Source        string                `json:"source"`
	Empty         bool                  `json:"empty"`
	Warning       string                `json:"warning,omitempty"`
	Stats         *signals.Statistics   `json:"stats,omitempty"`
	Insights      *signals.Insights     `json:"insights,omitempty"`
	Series        signals.Series        `json:"series"`
	Table         signals.DisplayTable  `json:"table"`
	RowsLoaded    int                   `json:"rowsLoaded"`
	RowsInPeriod  int                   `json:"rowsInPeriod"`
	FallbackDates int                   `json:"fallbackDates"`
	GeneratedAt   time.Time             `json:"generatedAt"`
	filtered      *signals.Table
}

// Filtered returns the period's table, or nil for an empty report.
func (r *Report) Filtered() *signals.Table { return r.filtered }

// DashboardOption configures a DashboardService.
type DashboardOption func(*DashboardService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer sets the tracer used for load spans.
func WithTracer(t trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics sets the instruments updated by each load.
func WithMetrics(m *infrastructure.DashboardMetrics) DashboardOption {
	return func(s *DashboardService) { s.metrics = m }
}

// WithLoadTimeout bounds a single fetch and clean. Zero means no bound.
func WithLoadTimeout(d time.Duration) DashboardOption {
	return func(s *DashboardService) { s.timeout = d }
}

// DashboardService loads the signal sheet and derives period reports.
//
// Loads that overlap in time share one fetch and clean. Nothing is kept
// between loads.
type DashboardService struct {
	source  sheets.Source
	cleaner *signals.Cleaner
	now     func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.DashboardMetrics
	timeout time.Duration
	group   singleflight.Group
}

// NewDashboardService creates a service reading from source.
func NewDashboardService(source sheets.Source, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		source: source,
		now:    time.Now,
		logger: logger.With(slog.String("component", "dashboard_service")),
		tracer: noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cleaner = signals.NewCleaner(s.now)
	return s
}

// Load builds the report for period. A sheet without usable rows yields an
// empty report with a warning and no error. Other failures are an
// *apierrors.AppError, or the context's error when ctx ends first.
func (s *DashboardService) Load(ctx context.Context, period signals.Period) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.load",
		trace.WithAttributes(
			attribute.String("period", string(period)),
			attribute.String("source", s.source.Name()),
		))
	defer span.End()

	start := time.Now()
	report, err := s.load(ctx, period)
	outcome := "success"
	switch {
	case err != nil:
		outcome = string(apierrors.TypeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case report.Empty:
		outcome = "empty"
	}
	s.metrics.RecordLoad(ctx, s.source.Name(), outcome, time.Since(start))
	return report, err
}

func (s *DashboardService) load(ctx context.Context, period signals.Period) (*Report, error) {
	report := &Report{Period: period, Source: s.source.Name(), GeneratedAt: s.now()}

	table, err := s.Table(ctx)
	if errors.Is(err, signals.ErrNoData) {
		s.logger.WarnContext(ctx, "sheet has no data rows", slog.String("source", s.source.Name()))
		report.Empty = true
		report.Warning = NoDataWarning
		report.Table = signals.BuildDisplay(nil)
		report.Series = signals.BuildSeries(nil)
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	err = guard(func() error {
		filtered := signals.FilterPeriod(table, period, s.now())
		report.filtered = filtered
		report.RowsLoaded = table.Len()
		report.RowsInPeriod = filtered.Len()
		report.FallbackDates = table.FallbackCount()
		report.Table = signals.BuildDisplay(filtered)
		report.Series = signals.BuildSeries(filtered)
		if stats, ok := signals.ComputeStatistics(filtered); ok {
			insights := signals.DeriveInsights(stats, filtered)
			report.Stats = &stats
			report.Insights = &insights
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "report build failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "dashboard loaded",
		slog.String("period", string(period)),
		slog.Int("rows", report.RowsLoaded),
		slog.Int("rows_in_period", report.RowsInPeriod),
		slog.Bool("has_stats", report.Stats != nil))
	return report, nil
}

// Table fetches and cleans the whole sheet. Concurrent callers share one
// in-flight load; a caller whose context ends stops waiting without
// cancelling the load for the others.
func (s *DashboardService) Table(ctx context.Context) (*signals.Table, error) {
	ch := s.group.DoChan("table", func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.timeout)
			defer cancel()
		}
		var table *signals.Table
		err := guard(func() error {
			var ferr error
			table, ferr = s.fetchAndClean(loadCtx)
			return ferr
		})
		if err != nil {
			if !errors.Is(err, signals.ErrNoData) && apierrors.TypeOf(err) == apierrors.ErrTypeInternal {
				s.logger.ErrorContext(loadCtx, "sheet processing failed", slog.String("error", err.Error()))
			}
			return nil, err
		}
		return table, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*signals.Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DashboardService) fetchAndClean(ctx context.Context) (*signals.Table, error) {
	logger := infrastructure.LoggerWithContext(ctx, s.logger)

	grid, err := s.source.Fetch(ctx)
	if err != nil {
		appErr := classifySourceError(err).WithContext("source", s.source.Name())
		logger.ErrorContext(ctx, "sheet load failed",
			slog.String("category", string(appErr.Type)),
			slog.String("error", err.Error()))
		return nil, appErr
	}

	table, err := s.cleaner.Clean(grid)
	if err != nil {
		return nil, err
	}

	if n := table.FallbackCount(); n > 0 {
		logger.WarnContext(ctx, "dates synthesized from row position",
			slog.Int("rows", n),
			slog.Int("total", table.Len()))
	}
	s.metrics.RecordRows(ctx, s.source.Name(), table.Len(), table.FallbackCount())
	return table, nil
}

// classifySourceError maps a source failure onto a category. Missing
// credentials are a configuration problem. Failing to reach the sheet or open
// its export is a network problem.
func classifySourceError(err error) *apierrors.AppError {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, security.ErrCredentialsNotFound):
		return apierrors.NewConfigError("Google Sheets credentials not found", err)
	case errors.Is(err, security.ErrInvalidCredentials):
		return apierrors.NewConfigError("Google Sheets credentials are invalid", err)
	case errors.Is(err, sheets.ErrOpen):
		return apierrors.NewNetworkError("Failed to open data file", err)
	case errors.Is(err, sheets.ErrConnect):
		return apierrors.NewNetworkError("Failed to connect to Google Sheets", err)
	case errors.Is(err, sheets.ErrFetch):
		return apierrors.NewNetworkError("Error loading data", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apierrors.NewNetworkError("Timed out loading data", err)
	default:
		return apierrors.NewAppError(apierrors.ErrTypeParsing, "Error loading data", err)
	}
}

// guard runs fn, turning a panic into an INTERNAL AppError that names the
// panic's type.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			category := fmt.Sprintf("%T", r)
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = apierrors.NewInternalError("Error processing data: "+category, cause).
				WithContext("error_class", category)
		}
	}()
	return fn()
}
