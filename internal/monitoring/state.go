package monitoring

import (
	"sort"
	"sync"
	"time"
)

// statStore keeps the counters behind Summary. Prometheus holds the same numbers as
// series; this copy answers /metrics/summary without a scrape.
type statStore struct {
	mu sync.Mutex

	predictions  map[string]uint64 // hit, miss, error
	predictionNs int64
	tts          map[string]uint64 // success or a failure reason
	websockets   int64
	rateLimited  uint64
	backend      string
	jobs         map[string]*MaintenanceJobSummary
}

func newStatStore() *statStore {
	return &statStore{
		predictions: make(map[string]uint64),
		tts:         make(map[string]uint64),
		jobs:        make(map[string]*MaintenanceJobSummary),
	}
}

func (s *statStore) update(fn func(*statStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *statStore) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := PredictionSummary{
		CacheHits:   s.predictions["hit"],
		CacheMisses: s.predictions["miss"],
	}
	for _, n := range s.predictions {
		p.Total += n
	}
	p.Errors = p.Total - p.CacheHits - p.CacheMisses
	if p.Total > 0 {
		p.AverageLatencySeconds = time.Duration(s.predictionNs).Seconds() / float64(p.Total)
	}

	var tts TTSSummary
	for result, n := range s.tts {
		if result == "success" {
			tts.Success += n
		} else {
			tts.Failure += n
		}
	}

	jobs := make([]MaintenanceJobSummary, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Job < jobs[j].Job })

	return Summary{
		GeneratedAt:  time.Now(),
		CacheBackend: s.backend,
		Predictions:  p,
		TTS:          tts,
		Websocket:    WebsocketSummary{ActiveConnections: s.websockets},
		RateLimited:  s.rateLimited,
		Maintenance:  MaintenanceSummary{Jobs: jobs},
	}
}

// recordJob folds one run into the job's history. Streaks reset on the opposite result.
func (s *statStore) recordJob(job, result, message string, took time.Duration, at time.Time) {
	entry, ok := s.jobs[job]
	if !ok {
		entry = &MaintenanceJobSummary{Job: job}
		s.jobs[job] = entry
	}

	entry.LastStatus = result
	entry.LastError = message
	entry.LastRunAt = at
	entry.LastDuration = took
	entry.TotalRuns++
	if result == "success" {
		entry.LastSuccessAt = at
		entry.ConsecutiveSuccess++
		entry.ConsecutiveFailures = 0
	} else {
		entry.ConsecutiveFailures++
		entry.ConsecutiveSuccess = 0
	}
}
