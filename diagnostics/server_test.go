package diagnostics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sammck-go/rgate/gateway"
	"github.com/sammck-go/rgate/logging"
)

func TestHandleStatsServesPoolSnapshot(t *testing.T) {
	logger := logging.New("test", logging.LevelInfo)
	pool := gateway.NewPool(logger, "127.0.0.1:1", 3, nil)
	srv := NewServer(logger, pool)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handleStats(rec, req)

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap gateway.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, 3, snap.Max)
	require.Equal(t, 0, snap.Active)
	require.Equal(t, 0, snap.Idle)
}

func TestHandlerServesStatsRoute(t *testing.T) {
	logger := logging.New("test", logging.LevelInfo)
	pool := gateway.NewPool(logger, "127.0.0.1:1", 1, nil)
	srv := NewServer(logger, pool)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

// handler() wraps the mux in requestlog.Wrap only when the logger is at
// LevelDebug or more verbose. Below that, it must return the bare mux
// unwrapped, distinguishable by its concrete type.
func TestHandlerSkipsRequestLogWrapBelowDebug(t *testing.T) {
	logger := logging.New("test", logging.LevelInfo)
	pool := gateway.NewPool(logger, "127.0.0.1:1", 1, nil)
	srv := NewServer(logger, pool)

	_, ok := srv.handler().(*http.ServeMux)
	require.True(t, ok, "below debug level, handler() should return the bare mux unwrapped")
}

func TestHandlerWrapsRequestLogAtDebug(t *testing.T) {
	logger := logging.New("test", logging.LevelDebug)
	pool := gateway.NewPool(logger, "127.0.0.1:1", 1, nil)
	srv := NewServer(logger, pool)

	_, ok := srv.handler().(*http.ServeMux)
	require.False(t, ok, "at debug level, handler() should be wrapped by requestlog and no longer be the bare mux")
}
