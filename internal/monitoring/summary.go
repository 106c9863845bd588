package monitoring

import "time"

// Summary surfaces aggregated runtime statistics.
type Summary struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	CacheBackend string             `json:"cache_backend"`
	Predictions  PredictionSummary  `json:"predictions"`
	TTS          TTSSummary         `json:"tts"`
	Websocket    WebsocketSummary   `json:"websocket"`
	RateLimited  uint64             `json:"rate_limited"`
	Maintenance  MaintenanceSummary `json:"maintenance"`
}

type PredictionSummary struct {
	Total                 uint64  `json:"total"`
	CacheHits             uint64  `json:"cache_hits"`
	CacheMisses           uint64  `json:"cache_misses"`
	Errors                uint64  `json:"errors"`
	AverageLatencySeconds float64 `json:"average_latency_seconds"`
}

type TTSSummary struct {
	Success uint64 `json:"success"`
	Failure uint64 `json:"failure"`
}

type WebsocketSummary struct {
	ActiveConnections int64 `json:"active_connections"`
}

type MaintenanceSummary struct {
	Jobs []MaintenanceJobSummary `json:"jobs"`
}

type MaintenanceJobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	if module := current(); module != nil && module.stats != nil {
		return module.stats.summary()
	}
	return emptySummary()
}

func emptySummary() Summary {
	return Summary{
		GeneratedAt: time.Now(),
		Maintenance: MaintenanceSummary{Jobs: []MaintenanceJobSummary{}},
	}
}
