package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"signaldash/internal/sheets"
	"signaldash/pkg/contracts"
)

// HealthService answers liveness, readiness and version probes.
type HealthService struct {
	source    sheets.Source
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the body of a health probe.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth is the state of one dependency.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service probing source.
func NewHealthService(source sheets.Source, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		source:    source,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports that the process is serving.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports whether the row source can be reached. Sources
// without a long-lived handle are always ready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  map[string]ServiceHealth{},
	}

	source := ServiceHealth{Status: "ready"}
	if c, ok := hs.source.(sheets.Connector); ok {
		if err := c.Connect(ctx); err != nil {
			hs.logger.WarnContext(ctx, "source not ready",
				slog.String("source", hs.source.Name()),
				slog.String("error", err.Error()))
			source = ServiceHealth{Status: "not_ready", Message: err.Error()}
			status.Status = "not_ready"
		}
	}
	status.Services[hs.source.Name()] = source
	return status
}

// LivenessCheck reports process uptime and runtime details.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns build information and uptime.
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":     info.Version,
		"api_version": info.APIVersion,
		"build_time":  info.BuildTime,
		"git_commit":  info.GitCommit,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}
