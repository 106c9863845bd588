package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/monitoring"
)

func registerPrometheusRoute(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if !cfg.Monitoring.Prometheus.Enabled || mon == nil {
		return
	}
	r.GET(prometheusEndpoint(cfg), gin.WrapH(mon.Handler()))
}
