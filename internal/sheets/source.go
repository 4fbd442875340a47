// Package sheets provides the row sources a dashboard load reads from: a
// Google Sheets worksheet, or a local CSV or XLSX export of one.
package sheets

import (
	"context"
	"errors"
)

var (
	// ErrConnect wraps failures to build a client for the source.
	ErrConnect = errors.New("connect to source")
	// ErrFetch wraps failures to read rows from a connected source.
	ErrFetch = errors.New("fetch rows")
	// ErrOpen wraps failures to open a local export file.
	ErrOpen = errors.New("open data file")
)

// Source yields the raw grid of a worksheet, header row first.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([][]string, error)
}

// Connector is implemented by sources that hold a long-lived handle.
type Connector interface {
	Connect(ctx context.Context) error
}
