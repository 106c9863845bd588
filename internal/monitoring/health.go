package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDegraded ProbeStatus = "degraded"
	StatusDown     ProbeStatus = "down"
)

// ProbeResult is one check's outcome as served by /health/ready.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Optional  bool          `json:"optional,omitempty"`
	Duration  time.Duration `json:"-"`
	LatencyMS float64       `json:"latency_ms"`
}

// HealthReport combines the results of one probe set. Success turns false when any
// required check is not up; Status is the worst status among the checks, where an
// optional check can lower it to degraded at most.
type HealthReport struct {
	Success bool          `json:"success"`
	Status  ProbeStatus   `json:"status"`
	Checks  []ProbeResult `json:"checks"`
}

// Check is a named dependency probe. An optional check can degrade a report but never
// fail it.
type Check struct {
	Name     string
	Run      func(ctx context.Context) ProbeResult
	Optional bool
}

// NewCheck constructs a required check. A nil fn always reports down.
func NewCheck(name string, fn func(ctx context.Context) ProbeResult) Check {
	if fn == nil {
		fn = func(context.Context) ProbeResult {
			return ProbeResult{Status: StatusDown, Details: "probe not implemented"}
		}
	}
	return Check{Name: name, Run: fn}
}

// Optional marks check as non-blocking for readiness.
func Optional(check Check) Check {
	check.Optional = true
	return check
}

// HealthManager holds the liveness and readiness probes of one process.
type HealthManager struct {
	liveness  []Check
	readiness []Check
}

func NewHealthManager() *HealthManager {
	return &HealthManager{}
}

func (m *HealthManager) RegisterLiveness(check Check) {
	if check.Name != "" {
		m.liveness = append(m.liveness, check)
	}
}

func (m *HealthManager) RegisterReadiness(check Check) {
	if check.Name != "" {
		m.readiness = append(m.readiness, check)
	}
}

func (m *HealthManager) EvaluateLiveness(ctx context.Context) HealthReport {
	return evaluate(ctx, m.liveness)
}

func (m *HealthManager) EvaluateReadiness(ctx context.Context) HealthReport {
	return evaluate(ctx, m.readiness)
}

// evaluate runs every check at once; results keep registration order.
func evaluate(ctx context.Context, checks []Check) HealthReport {
	if ctx == nil {
		ctx = context.Background()
	}

	report := HealthReport{Success: true, Status: StatusUp, Checks: make([]ProbeResult, len(checks))}
	var g errgroup.Group
	for i := range checks {
		g.Go(func() error {
			report.Checks[i] = checks[i].probe(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Checks {
		if r.Status == StatusUp {
			continue
		}
		status := r.Status
		if r.Optional {
			status = StatusDegraded
		} else {
			report.Success = false
		}
		if severity(status) > severity(report.Status) {
			report.Status = status
		}
	}
	return report
}

func severity(s ProbeStatus) int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// probe runs the check, turning a panic or an empty status into down, and stamps
// name, optionality and latency on the result.
func (c Check) probe(ctx context.Context) (r ProbeResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r = ProbeResult{Status: StatusDown, Details: fmt.Sprint("check panicked: ", rec)}
		}
		if r.Status == "" {
			r.Status = StatusDown
		}
		if r.Duration <= 0 {
			r.Duration = time.Since(start)
		}
		r.Component, r.Optional = c.Name, c.Optional
		r.LatencyMS = float64(r.Duration.Microseconds()) / 1000
	}()
	return c.Run(ctx)
}

// ResultFromError maps a probe error to a result: nil is up, a timeout or cancellation
// is degraded, anything else is down.
func ResultFromError(component string, err error, duration time.Duration) ProbeResult {
	result := ProbeResult{Component: component, Status: StatusUp, Duration: max(duration, 0)}
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		result.Status = StatusDegraded
		result.Details = err.Error()
	default:
		result.Status = StatusDown
		result.Details = err.Error()
	}
	return result
}
