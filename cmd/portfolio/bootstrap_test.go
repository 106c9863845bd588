package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/cache"
)

func testConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{SecretKey: "portfolio-test-secret"},
		Portfolio: app.PortfolioConfig{
			Title:  "Projects",
			Author: "Charles",
			Projects: []app.ProjectConfig{
				{Name: "Treasure Island", Description: "A text adventure."},
			},
		},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		},
		Monitoring: app.MonitoringConfig{
			Health: app.HealthConfig{Enabled: true},
		},
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBootstrapRuntimeServesSeededBlog(t *testing.T) {
	stack, err := bootstrapRuntime(testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Equal(t, cache.BackendDatabase, stack.Stores.Backend())

	home := get(stack.Router, "/")
	require.Equal(t, http.StatusOK, home.Code)
	require.Contains(t, home.Body.String(), "Treasure Island")

	blog := get(stack.Router, "/blog")
	require.Equal(t, http.StatusOK, blog.Code)
	require.Contains(t, blog.Body.String(), "Hello World")

	form := get(stack.Router, "/name_generator")
	require.Equal(t, http.StatusOK, form.Code)
	require.NotEmpty(t, form.Result().Cookies())

	ready := get(stack.Router, "/health/ready")
	require.Equal(t, http.StatusOK, ready.Code)
}

func TestBootstrapRuntimeRequiresSecretKey(t *testing.T) {
	cfg := testConfig()
	cfg.Server.SecretKey = ""

	_, err := bootstrapRuntime(cfg, zap.NewNop())
	require.Error(t, err)
}
