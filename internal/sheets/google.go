package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"signaldash/internal/security"
)

// CredentialProvider resolves service account credentials on demand.
type CredentialProvider interface {
	Resolve() (*security.Credentials, error)
}

// GoogleConfig identifies the worksheet to read.
type GoogleConfig struct {
	SpreadsheetID string
	SheetName     string
}

// GoogleSource reads a worksheet through the Sheets API.
//
// The API client is built on the first successful Connect and reused for the
// life of the process. A failed Connect is returned to the caller and not
// remembered, so the next load tries again.
type GoogleSource struct {
	cfg     GoogleConfig
	creds   CredentialProvider
	options []option.ClientOption
	logger  *slog.Logger

	mu      sync.Mutex
	service *gsheets.Service
}

// NewGoogleSource creates an unconnected source. creds may be nil when opts
// already carry authentication.
func NewGoogleSource(cfg GoogleConfig, creds CredentialProvider, logger *slog.Logger, opts ...option.ClientOption) *GoogleSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	return &GoogleSource{
		cfg:     cfg,
		creds:   creds,
		options: opts,
		logger:  logger.With(slog.String("component", "google_sheets")),
	}
}

// Name identifies the source in logs and errors.
func (g *GoogleSource) Name() string { return "google_sheets" }

// Connect builds the API client if it does not exist yet.
func (g *GoogleSource) Connect(ctx context.Context) error {
	_, err := g.client(ctx)
	return err
}

func (g *GoogleSource) client(ctx context.Context) (*gsheets.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.service != nil {
		return g.service, nil
	}

	opts := append([]option.ClientOption{option.WithScopes(gsheets.SpreadsheetsReadonlyScope)}, g.options...)
	if g.creds != nil {
		creds, err := g.creds.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}
		opts = append(opts, option.WithCredentialsJSON(creds.JSON))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		g.logger.Error("sheets client creation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	g.logger.Info("sheets client ready",
		slog.String("spreadsheet_id", g.cfg.SpreadsheetID),
		slog.String("sheet", g.cfg.SheetName))
	g.service = svc
	return svc, nil
}

// Fetch returns every populated cell of the worksheet as text.
func (g *GoogleSource) Fetch(ctx context.Context) ([][]string, error) {
	svc, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(g.cfg.SpreadsheetID, g.cfg.SheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrFetch, g.cfg.SpreadsheetID, g.cfg.SheetName, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		grid[i] = make([]string, len(row))
		for j, v := range row {
			grid[i][j] = cellText(v)
		}
	}

	g.logger.Debug("sheet fetched", slog.Int("rows", len(grid)))
	return grid, nil
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
