package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/monitoring"
	appErrors "github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/response"
)

const statsTimeout = 5 * time.Second

// StatsSource exposes cache introspection.
type StatsSource interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

// MetricsHandler reports cache statistics and the in-process activity summary.
type MetricsHandler struct {
	stats              StatsSource
	prometheusEnabled  bool
	prometheusEndpoint string
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(stats StatsSource, prometheusEnabled bool, prometheusEndpoint string) (*MetricsHandler, error) {
	if stats == nil {
		return nil, errors.New("metrics handler: stats source is required")
	}
	return &MetricsHandler{
		stats:              stats,
		prometheusEnabled:  prometheusEnabled,
		prometheusEndpoint: strings.TrimSpace(prometheusEndpoint),
	}, nil
}

type cacheMetrics struct {
	ConnectedClients int64   `json:"redis_connected_clients"`
	UsedMemory       string  `json:"redis_used_memory"`
	KeyspaceHits     int64   `json:"redis_keyspace_hits"`
	KeyspaceMisses   int64   `json:"redis_keyspace_misses"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	Backend          string  `json:"backend"`
}

// Cache reports the cache store's counters.
// GET /metrics
func (h *MetricsHandler) Cache(c *gin.Context) {
	ctx, cancel := boundedContext(c, statsTimeout)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		response.Error(c, appErrors.ErrMetricsUnavailable.
			WithMessage("Metrics unavailable: "+err.Error()).
			WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, cacheMetrics{
		ConnectedClients: stats.ConnectedClients,
		UsedMemory:       stats.UsedMemoryHuman,
		KeyspaceHits:     stats.KeyspaceHits,
		KeyspaceMisses:   stats.KeyspaceMisses,
		CacheHitRate:     stats.HitRate(),
		Backend:          stats.Backend,
	})
}

// Summary returns aggregated activity statistics and where Prometheus scrapes them.
// GET /metrics/summary
func (h *MetricsHandler) Summary(c *gin.Context) {
	endpoint := h.prometheusEndpoint
	if endpoint == "" {
		endpoint = "/metrics/prometheus"
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": monitoring.Snapshot(),
		"prometheus": gin.H{
			"enabled":  h.prometheusEnabled,
			"endpoint": endpoint,
		},
	})
}
