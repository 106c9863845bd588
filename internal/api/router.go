package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/handlers"
	"github.com/charlesng35/aidemo/internal/middleware"
	"github.com/charlesng35/aidemo/internal/monitoring"
	"github.com/charlesng35/aidemo/internal/realtime"
	"github.com/charlesng35/aidemo/pkg/crypto"
	"github.com/charlesng35/aidemo/web"
)

const cacheMetricsPath = "/metrics"

// ChatDeps carries the collaborators of the sentiment chat server.
type ChatDeps struct {
	Config     *app.Config
	Predictor  handlers.Predictor
	Speaker    handlers.Speaker
	Stats      handlers.StatsSource
	RateStore  middleware.RateStore
	Monitoring *monitoring.Module
	Hub        *realtime.Hub
}

// PortfolioDeps carries the collaborators of the portfolio site.
type PortfolioDeps struct {
	Config     *app.Config
	DB         *gorm.DB
	Signer     *crypto.Signer
	RateStore  middleware.RateStore
	Monitoring *monitoring.Module
}

// NewRouter builds the Gin engine for the sentiment chat server.
func NewRouter(deps ChatDeps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.Predictor == nil {
		return nil, errors.New("predictor must be provided")
	}
	if deps.Stats == nil {
		return nil, errors.New("cache stats source must be provided")
	}
	if endpoint := prometheusEndpoint(deps.Config); deps.Config.Monitoring.Prometheus.Enabled && endpoint == cacheMetricsPath {
		return nil, fmt.Errorf("prometheus endpoint %s collides with the cache metrics route", endpoint)
	}

	r, limited, err := newEngine(deps.Config, deps.RateStore)
	if err != nil {
		return nil, err
	}

	chat, err := handlers.NewChatHandler(deps.Predictor, deps.Speaker)
	if err != nil {
		return nil, err
	}
	metrics, err := handlers.NewMetricsHandler(deps.Stats, deps.Config.Monitoring.Prometheus.Enabled, prometheusEndpoint(deps.Config))
	if err != nil {
		return nil, err
	}

	hub := deps.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}
	hub.OnConnect = monitoring.RecordWebsocketConnection
	hub.OnMessage = monitoring.RecordWebsocketMessage
	stream, err := handlers.NewStreamHandler(hub, deps.Predictor)
	if err != nil {
		return nil, err
	}

	registerChatRoutes(limited, chat, stream, metrics)
	registerHealthRoutes(r, deps.Config, deps.Monitoring)
	registerPrometheusRoute(r, deps.Config, deps.Monitoring)

	r.NoRoute(middleware.NotFoundHandler)
	return r, nil
}

// NewPortfolioRouter builds the Gin engine for the portfolio site.
func NewPortfolioRouter(deps PortfolioDeps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.DB == nil {
		return nil, errors.New("database handle must be provided")
	}
	if deps.Signer == nil {
		return nil, errors.New("csrf signer must be provided")
	}

	r, limited, err := newEngine(deps.Config, deps.RateStore)
	if err != nil {
		return nil, err
	}

	portfolio, err := handlers.NewPortfolioHandler(deps.DB, deps.Config.Portfolio)
	if err != nil {
		return nil, err
	}

	registerPortfolioRoutes(limited, portfolio, middleware.CSRF(deps.Signer))
	registerHealthRoutes(r, deps.Config, deps.Monitoring)
	registerPrometheusRoute(r, deps.Config, deps.Monitoring)

	r.NoRoute(middleware.NotFoundHandler)
	return r, nil
}

// newEngine applies the middleware shared by both sites and mounts the embedded pages.
// Application routes go on the returned group, which carries the rate limiter; health
// and Prometheus routes stay on the engine so probes are never throttled.
func newEngine(cfg *app.Config, rateStore middleware.RateStore) (*gin.Engine, *gin.RouterGroup, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	limited := r.Group("/")
	if limit := cfg.Server.RateLimit; limit.Enabled && rateStore != nil {
		limited.Use(middleware.RateLimit(rateStore, limit.Requests, limit.Window))
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := web.Static()
	if err != nil {
		return nil, nil, fmt.Errorf("load static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	return r, limited, nil
}

func prometheusEndpoint(cfg *app.Config) string {
	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		return "/metrics/prometheus"
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}
