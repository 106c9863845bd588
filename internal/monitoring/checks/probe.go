package checks

import (
	"context"
	"time"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

const defaultProbeTimeout = 2 * time.Second

// timed runs fn under a deadline and maps its error onto a probe result.
func timed(ctx context.Context, component string, timeout time.Duration, fn func(ctx context.Context) error) monitoring.ProbeResult {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return monitoring.ResultFromError(component, fn(probeCtx), time.Since(start))
}

func down(details string) monitoring.ProbeResult {
	return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: details}
}
