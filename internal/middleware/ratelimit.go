package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/internal/monitoring"
	"github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
	"github.com/charlesng35/aidemo/pkg/response"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateStore holds fixed-window counters. cache.Store satisfies it, so the budget lives
// in Redis or the SQL fallback and is shared by every replica using that store.
type RateStore interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimit limits requests per (clientIP, route) within a fixed window. When the store
// fails the request is let through.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := rateLimitKeyPrefix + route + ":" + c.ClientIP()

		hits, ttl, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.String("route", route), zap.Error(err))
			c.Next()
			return
		}

		count := int(hits)
		remaining := max(maxRequests-count, 0)
		resetIn := max(int(ttl.Round(time.Second)/time.Second), 0)

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetIn))

		if count > maxRequests {
			c.Header("Retry-After", strconv.Itoa(resetIn))
			monitoring.RecordRateLimited(route)
			response.Abort(c, errors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
