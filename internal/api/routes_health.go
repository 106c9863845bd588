package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/handlers"
	"github.com/charlesng35/aidemo/internal/monitoring"
)

// registerHealthRoutes always serves /health; the probes only answer when health checks
// are enabled and a monitoring module is wired.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	var manager *monitoring.HealthManager
	if cfg.Monitoring.Health.Enabled && mon != nil {
		manager = mon.Health()
	}

	health := handlers.NewHealthHandler(manager)
	r.GET("/health", health.Status)
	r.GET("/health/live", health.Live)
	r.GET("/health/ready", health.Ready)
}
