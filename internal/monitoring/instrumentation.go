package monitoring

import (
	"strings"
	"time"
)

// Every Record* helper is a no-op until SetModule installs a module, so packages can
// instrument unconditionally and tests need no setup.

func with(fn func(m *Module)) {
	if m := current(); m != nil {
		fn(m)
	}
}

// ObserveAPILatency records one HTTP request. path is the gin route pattern.
func ObserveAPILatency(method, path, status string, took time.Duration) {
	with(func(m *Module) {
		m.metrics.apiLatency.
			WithLabelValues(strings.ToUpper(label(method)), routeLabel(path), label(status)).
			Observe(seconds(took))
	})
}

// RecordPrediction counts a prediction by outcome: hit, miss or error.
func RecordPrediction(outcome string, took time.Duration) {
	outcome = label(outcome)
	with(func(m *Module) {
		m.metrics.predictions.WithLabelValues(outcome).Inc()
		m.metrics.predictionLatency.WithLabelValues(outcome).Observe(seconds(took))
		m.stats.update(func(s *statStore) {
			s.predictions[outcome]++
			s.predictionNs += int64(max(took, 0))
		})
	})
}

// RecordTTSRequest counts a speech proxy call. Latency is only observed when the call
// reached the TTS service, signalled by a positive duration.
func RecordTTSRequest(result string, took time.Duration) {
	result = label(result)
	with(func(m *Module) {
		m.metrics.ttsRequests.WithLabelValues(result).Inc()
		if took > 0 {
			m.metrics.ttsLatency.Observe(seconds(took))
		}
		m.stats.update(func(s *statStore) { s.tts[result]++ })
	})
}

// RecordWebsocketConnection moves the open-socket gauge by delta, never below zero.
func RecordWebsocketConnection(delta int64) {
	if delta == 0 {
		return
	}
	with(func(m *Module) {
		m.stats.update(func(s *statStore) {
			s.websockets = max(s.websockets+delta, 0)
			m.metrics.websocketConnections.Set(float64(s.websockets))
		})
	})
}

// RecordWebsocketMessage counts a frame by direction, "in" or "out".
func RecordWebsocketMessage(direction string) {
	with(func(m *Module) {
		m.metrics.websocketMessages.WithLabelValues(label(direction)).Inc()
	})
}

func RecordRateLimited(path string) {
	with(func(m *Module) {
		m.metrics.rateLimited.WithLabelValues(routeLabel(path)).Inc()
		m.stats.update(func(s *statStore) { s.rateLimited++ })
	})
}

// SetCacheBackend flags backend ("redis" or "database") as the active cache store.
func SetCacheBackend(backend string) {
	backend = label(backend)
	with(func(m *Module) {
		m.metrics.cacheBackend.Reset()
		m.metrics.cacheBackend.WithLabelValues(backend).Set(1)
		m.stats.update(func(s *statStore) { s.backend = backend })
	})
}

// RecordCachePurge adds the number of expired cache rows a purge removed.
func RecordCachePurge(removed int64) {
	if removed <= 0 {
		return
	}
	with(func(m *Module) { m.metrics.cachePurged.Add(float64(removed)) })
}

func RecordFormSubmission(form string) {
	with(func(m *Module) { m.metrics.formSubmissions.WithLabelValues(label(form)).Inc() })
}

// RecordMaintenanceRun records a finished job run. result is "success" or "failure";
// message carries the failure text.
func RecordMaintenanceRun(job, result, message string, took time.Duration) {
	job, result = label(job), label(result)
	now := time.Now()
	with(func(m *Module) {
		m.metrics.maintenanceRuns.WithLabelValues(job, result).Inc()
		m.metrics.maintenanceDuration.WithLabelValues(job).Observe(seconds(took))
		if result == "success" {
			m.metrics.maintenanceLastRun.WithLabelValues(job).Set(float64(now.Unix()))
		}
		m.stats.update(func(s *statStore) {
			s.recordJob(job, result, strings.TrimSpace(message), max(took, 0), now)
		})
	})
}

func label(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}

// routeLabel turns "/api/posts/:id" into "api/posts/:id" and "/" into "root".
func routeLabel(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "unknown"
	}
	path = strings.ReplaceAll(strings.Trim(path, "/"), " ", "_")
	if path == "" {
		return "root"
	}
	return path
}

func seconds(d time.Duration) float64 {
	return max(d, 0).Seconds()
}
