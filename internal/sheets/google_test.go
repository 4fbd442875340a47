package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"signaldash/internal/security"
)

func fakeSheetsAPI(t *testing.T, status int, values [][]interface{}) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Signals", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden","status":"PERMISSION_DENIED"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "Signals!A1:F3",
			"majorDimension": "ROWS",
			"values":         values,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testOptions(srv *httptest.Server) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithoutAuthentication(),
	}
}

func TestGoogleSource_Fetch(t *testing.T) {
	srv, calls := fakeSheetsAPI(t, http.StatusOK, [][]interface{}{
		{"Date", "Total Signal", "Finished", "TP", "SL", "Winrate"},
		{"2024-01-05", 10, "8", "7", "1", "87.5%"},
		{"2024-01-06", "9"},
	})

	src := NewGoogleSource(GoogleConfig{SpreadsheetID: "sheet-123", SheetName: "Signals"}, nil, nil, testOptions(srv)...)

	grid, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Equal(t, []string{"2024-01-05", "10", "8", "7", "1", "87.5%"}, grid[1])
	assert.Equal(t, []string{"2024-01-06", "9"}, grid[2])
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGoogleSource_ConnectReusesClient(t *testing.T) {
	srv, _ := fakeSheetsAPI(t, http.StatusOK, nil)
	src := NewGoogleSource(GoogleConfig{SpreadsheetID: "sheet-123", SheetName: "Signals"}, nil, nil, testOptions(srv)...)

	require.NoError(t, src.Connect(context.Background()))
	first := src.service
	require.NoError(t, src.Connect(context.Background()))
	assert.Same(t, first, src.service)
}

func TestGoogleSource_FetchError(t *testing.T) {
	srv, _ := fakeSheetsAPI(t, http.StatusForbidden, nil)
	src := NewGoogleSource(GoogleConfig{SpreadsheetID: "sheet-123", SheetName: "Signals"}, nil, nil, testOptions(srv)...)

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
}

type failingCredentials struct {
	calls int
}

func (f *failingCredentials) Resolve() (*security.Credentials, error) {
	f.calls++
	return nil, security.ErrCredentialsNotFound
}

func TestGoogleSource_FailedConnectIsNotCached(t *testing.T) {
	creds := &failingCredentials{}
	src := NewGoogleSource(GoogleConfig{SpreadsheetID: "sheet-123"}, creds, nil)

	for i := 0; i < 2; i++ {
		err := src.Connect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConnect))
		assert.True(t, errors.Is(err, security.ErrCredentialsNotFound))
	}
	assert.Equal(t, 2, creds.calls)
	assert.Nil(t, src.service)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "abc", cellText("abc"))
	assert.Equal(t, "87.5", cellText(87.5))
	assert.Equal(t, "10", cellText(float64(10)))
	assert.Equal(t, "true", cellText(true))
}
