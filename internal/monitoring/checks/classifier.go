package checks

import (
	"context"
	"time"

	"github.com/charlesng35/aidemo/internal/monitoring"
)

// ModelSource reports whether a sentiment classifier is loaded.
type ModelSource interface {
	Available() bool
	ClassifierName() string
}

// Classifier is an optional probe reporting degraded when no model is loaded; cached
// predictions are still served in that state.
func Classifier(source ModelSource) monitoring.Check {
	return monitoring.Optional(monitoring.NewCheck("classifier", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if source == nil || !source.Available() {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "model not available",
				Duration: time.Since(start),
			}
		}
		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  source.ClassifierName(),
			Duration: time.Since(start),
		}
	}))
}
