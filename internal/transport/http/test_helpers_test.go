package http

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	apierrors "signaldash/internal/errors"
	"signaldash/internal/middleware"
	"signaldash/internal/services"
	"signaldash/internal/shared/testutil"
	"signaldash/internal/signals"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Load(ctx context.Context, period signals.Period) (*services.Report, error) {
	args := m.Called(period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Report), args.Error(1)
}

// newTestRouter mounts the dashboard routes behind the request ID middleware,
// as the server does.
func newTestRouter(t *testing.T, svc DashboardService) (chi.Router, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(eh.NotFound)
	r.MethodNotAllowed(eh.MethodNotAllowed)
	r.Mount("/api/dashboard", NewDashboardHandler(svc, signals.PeriodWeek, logger, eh).Routes())
	return r, logs
}
