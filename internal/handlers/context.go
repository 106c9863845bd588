package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// requestContext returns the request's context, or Background when the handler runs outside an HTTP request.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

// boundedContext caps the request context at d. A non-positive d only adds cancellation.
func boundedContext(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(requestContext(c))
	}
	return context.WithTimeout(requestContext(c), d)
}
