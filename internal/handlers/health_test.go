package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

func newHealthRouter(manager *monitoring.HealthManager, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(manager)
	if now != nil {
		handler.now = now
	}

	r := gin.New()
	r.GET("/health", handler.Status)
	r.GET("/health/live", handler.Live)
	r.GET("/health/ready", handler.Ready)
	return r
}

func TestHealthStatus(t *testing.T) {
	fixed := time.Unix(1700000000, 500_000_000)
	r := newHealthRouter(nil, func() time.Time { return fixed })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status    string  `json:"status"`
		Timestamp float64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.InDelta(t, 1700000000.5, body.Timestamp, 1e-3)
}

func TestHealthProbesDisabledWithoutManager(t *testing.T) {
	r := newHealthRouter(nil, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("cache", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "dial tcp: refused"}
	}))
	r := newHealthRouter(manager, nil)

	live := httptest.NewRecorder()
	r.ServeHTTP(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, live.Code)

	ready := httptest.NewRecorder()
	r.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, ready.Code)
	require.Contains(t, ready.Body.String(), "dial tcp: refused")
	require.Contains(t, ready.Body.String(), `"component":"cache"`)
}
