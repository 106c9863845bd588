package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/cache/cachetest"
	"github.com/charlesng35/aidemo/internal/prediction"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()

	speech := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
	}))
	t.Cleanup(speech.Close)

	return &app.Config{
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		},
		Prediction: app.PredictionConfig{CacheTTL: time.Hour, KeyPrefix: "prediction:"},
		Sentiment:  app.SentimentConfig{Provider: "lexicon"},
		TTS:        app.TTSConfig{URL: speech.URL, Timeout: time.Second},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics/prometheus"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
}

func bootstrap(t *testing.T, cfg *app.Config) *runtimeStack {
	t.Helper()
	stack, err := bootstrapRuntime(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })
	return stack
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBootstrapRuntimeServesPredictionsFromRedis(t *testing.T) {
	redis := cachetest.NewFakeRedis(t)
	cfg := testConfig(t)
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: redis.Addr()}

	stack := bootstrap(t, cfg)
	require.NotNil(t, stack.Stores.Redis)
	require.Equal(t, cache.BackendRedis, stack.Stores.Backend())
	require.False(t, stack.Cleaner.Enabled())

	first := do(t, stack.Router, http.MethodPost, "/predict", map[string]string{"text": "I love this!"})
	require.Equal(t, http.StatusOK, first.Code)

	second := do(t, stack.Router, http.MethodPost, "/predict", map[string]string{"text": "I love this!"})
	require.Equal(t, http.StatusOK, second.Code)

	var payload struct {
		Prediction struct {
			Label string `json:"label"`
		} `json:"prediction"`
		Cached bool `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &payload))
	require.True(t, payload.Cached)
	require.Equal(t, "POSITIVE", payload.Prediction.Label)
	require.Contains(t, redis.Keys(), prediction.CacheKey("prediction:", "I love this!"))

	metrics := do(t, stack.Router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), `"backend":"redis"`)

	ready := do(t, stack.Router, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, ready.Code)

	speak := do(t, stack.Router, http.MethodPost, "/speak", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, speak.Code)
	require.Equal(t, "audio/mpeg", speak.Header().Get("Content-Type"))
}

func TestBootstrapRuntimeFallsBackToDatabaseStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Redis = app.RedisCacheConfig{Enabled: true, Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond}

	stack := bootstrap(t, cfg)
	require.Nil(t, stack.Stores.Redis)
	require.Equal(t, cache.BackendDatabase, stack.Stores.Backend())
	require.True(t, stack.Cleaner.Enabled())

	w := do(t, stack.Router, http.MethodPost, "/predict", map[string]string{"text": "terrible service"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "NEGATIVE")

	metrics := do(t, stack.Router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), `"backend":"database"`)
}

func TestBootstrapRuntimeDisabledClassifierServesOnly503(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sentiment.Provider = "disabled"

	stack := bootstrap(t, cfg)
	require.False(t, stack.Predictor.Available())

	w := do(t, stack.Router, http.MethodPost, "/predict", map[string]string{"text": "anything"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBootstrapRuntimeRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sentiment.Provider = "gpt"

	_, err := bootstrapRuntime(cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "sentiment")
}
