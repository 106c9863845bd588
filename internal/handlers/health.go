package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

const probeTimeout = 10 * time.Second

// HealthHandler serves the status endpoint and the dependency probes.
type HealthHandler struct {
	manager *monitoring.HealthManager
	now     func() time.Time
}

// NewHealthHandler constructs a health handler. The manager may be nil, in which case
// only /health answers and the probes report disabled.
func NewHealthHandler(manager *monitoring.HealthManager) *HealthHandler {
	return &HealthHandler{manager: manager, now: time.Now}
}

// Status always reports healthy with the current unix time in seconds.
func (h *HealthHandler) Status(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": float64(now.UnixNano()) / float64(time.Second),
	})
}

// Live evaluates liveness probes.
func (h *HealthHandler) Live(c *gin.Context) {
	if h.manager == nil {
		disabledHealthHandler(c)
		return
	}
	ctx, cancel := boundedContext(c, probeTimeout)
	defer cancel()
	h.writeReport(c, h.manager.EvaluateLiveness(ctx))
}

// Ready evaluates readiness probes (database, cache, classifier).
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.manager == nil {
		disabledHealthHandler(c)
		return
	}
	ctx, cancel := boundedContext(c, probeTimeout)
	defer cancel()
	h.writeReport(c, h.manager.EvaluateReadiness(ctx))
}

func (h *HealthHandler) writeReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": h.now().UTC(),
	})
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
