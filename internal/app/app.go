package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"signaldash/internal/config"
	apierrors "signaldash/internal/errors"
	"signaldash/internal/infrastructure"
	customMiddleware "signaldash/internal/middleware"
	"signaldash/internal/security"
	"signaldash/internal/services"
	"signaldash/internal/sheets"
	"signaldash/internal/signals"
	handlers "signaldash/internal/transport/http"
	"signaldash/pkg/contracts"
)

// AppName is the display name used in startup logs.
const AppName = "Signal Dashboard"

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Logger           *slog.Logger
	Router           *chi.Mux
	Server           *http.Server
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	Source           sheets.Source
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
}

// NewApplication loads configuration and the process logger, then builds the
// application from them.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires the application from cfg. Nothing is started.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Source.Kind))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Observability, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	source, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Source:        source,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()
	return app, nil
}

// NewSource builds the row source selected by cfg.Source.Kind.
func NewSource(cfg *config.Config, logger *slog.Logger) (sheets.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceSheets:
		return sheets.NewGoogleSource(
			sheets.GoogleConfig{
				SpreadsheetID: cfg.Sheets.SpreadsheetID,
				SheetName:     cfg.Sheets.SheetName,
			},
			NewCredentialResolver(cfg.Sheets, logger),
			logger,
		), nil
	case config.SourceCSV:
		return sheets.CSVSource{Path: cfg.Source.File}, nil
	case config.SourceXLSX:
		return sheets.XLSXSource{Path: cfg.Source.File, Sheet: cfg.Source.XLSXSheet}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// NewCredentialResolver checks, in order, the field-by-field service account,
// the inline JSON key, the credentials environment variable and the secret
// files.
func NewCredentialResolver(cfg config.SheetsConfig, logger *slog.Logger) *security.CredentialResolver {
	sa := cfg.ServiceAccount
	files := cfg.SecretFiles
	if len(files) == 0 {
		files = security.DefaultSecretFiles
	}
	return security.NewCredentialResolver(logger,
		security.StructuredSource{Account: security.ServiceAccount{
			Type:                    sa.Type,
			ProjectID:               sa.ProjectID,
			PrivateKeyID:            sa.PrivateKeyID,
			PrivateKey:              sa.PrivateKey,
			ClientEmail:             sa.ClientEmail,
			ClientID:                sa.ClientID,
			AuthURI:                 sa.AuthURI,
			TokenURI:                sa.TokenURI,
			AuthProviderX509CertURL: sa.AuthProviderX509CertURL,
			ClientX509CertURL:       sa.ClientX509CertURL,
			UniverseDomain:          sa.UniverseDomain,
		}},
		security.JSONStringSource{JSON: cfg.CredentialsJSON},
		security.EnvSource{Var: cfg.CredentialsEnv},
		security.FileSource{Paths: files, Logger: logger},
	)
}

func (a *Application) initializeServices() {
	loc := a.Config.Location()
	a.DashboardService = services.NewDashboardService(a.Source, a.Logger,
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(a.Metrics),
		services.WithLoadTimeout(a.Config.Dashboard.LoadTimeout),
	)
	a.HealthService = services.NewHealthService(a.Source, a.Logger)
}

// setupRouter applies middleware in the order RequestID, RealIP, OTel,
// Logger, Recoverer, SecurityHeaders, CORS, RateLimit, Timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
		}
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		}

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
		})

		dashboardHandler := handlers.NewDashboardHandler(
			a.DashboardService,
			signals.Period(a.Config.Dashboard.DefaultPeriod),
			a.Logger,
			a.ErrorHandler,
		)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start serves in the background. A listener failure is sent on the returned
// channel.
func (a *Application) Start(ctx context.Context) <-chan error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run serves until ctx ends or the process receives SIGINT or SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := a.Start(ctx)
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	}
	return a.Stop(ctx)
}
