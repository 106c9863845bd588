package checks

import (
	"context"
	"time"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

// Pinger is the slice of cache.Store the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache probes the active cache store. The backend name lands in Details so operators
// can tell when the database fallback is serving.
func Cache(store Pinger, backend string, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		if store == nil {
			return down("cache store not configured")
		}
		result := timed(ctx, "cache", timeout, store.Ping)
		if result.Status == monitoring.StatusUp {
			result.Details = backend
		}
		return result
	})
}
