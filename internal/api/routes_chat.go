package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/handlers"
)

func registerChatRoutes(r gin.IRoutes, chat *handlers.ChatHandler, stream *handlers.StreamHandler, metrics *handlers.MetricsHandler) {
	r.GET("/", chat.Index)
	r.POST("/predict", chat.Predict)
	r.POST("/speak", chat.Speak)
	r.GET("/ws", stream.Serve)

	r.GET(cacheMetricsPath, metrics.Cache)
	r.GET(cacheMetricsPath+"/summary", metrics.Summary)
}
