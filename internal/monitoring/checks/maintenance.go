package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

const defaultMaintenanceMaxAge = 6 * time.Hour

// Maintenance reports on one background job from the monitoring summary: down after a
// failed run, degraded when the last success is older than maxAge (6h when zero), up
// while the job has not run yet.
func Maintenance(job string, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		var summary *monitoring.MaintenanceJobSummary
		for _, candidate := range monitoring.Snapshot().Maintenance.Jobs {
			if candidate.Job == job {
				summary = &candidate
				break
			}
		}

		switch {
		case summary == nil || summary.TotalRuns == 0:
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: job + ": pending first run"}
		case summary.ConsecutiveFailures > 0:
			return down(fmt.Sprintf("%s: %d consecutive failures: %s", job, summary.ConsecutiveFailures, summary.LastError))
		case time.Since(summary.LastSuccessAt) > maxAge:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: fmt.Sprintf("%s: last success %s", job, summary.LastSuccessAt.UTC().Format(time.RFC3339)),
			}
		default:
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: job}
		}
	})
}
