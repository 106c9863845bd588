package monitoring

import "github.com/prometheus/client_golang/prometheus"

type metricSet struct {
	apiLatency           *prometheus.HistogramVec
	predictions          *prometheus.CounterVec
	predictionLatency    *prometheus.HistogramVec
	ttsRequests          *prometheus.CounterVec
	ttsLatency           prometheus.Histogram
	websocketConnections prometheus.Gauge
	websocketMessages    *prometheus.CounterVec
	rateLimited          *prometheus.CounterVec
	cacheBackend         *prometheus.GaugeVec
	cachePurged          prometheus.Counter
	formSubmissions      *prometheus.CounterVec
	maintenanceRuns      *prometheus.CounterVec
	maintenanceDuration  *prometheus.HistogramVec
	maintenanceLastRun   *prometheus.GaugeVec
}

// synthesis is slow compared to everything else served here
var ttsBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30}

func newMetricSet(ns string) *metricSet {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: name, Help: help, Buckets: prometheus.DefBuckets,
		}, labels)
	}

	return &metricSet{
		apiLatency:        histogram("api_latency_seconds", "HTTP request latency by route", "method", "path", "status"),
		predictions:       counter("predictions_total", "Sentiment predictions by cache outcome", "outcome"),
		predictionLatency: histogram("prediction_latency_seconds", "Time to answer a prediction, cache lookup included", "outcome"),
		ttsRequests:       counter("tts_requests_total", "Text-to-speech proxy calls by result", "result"),
		ttsLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Name: "tts_latency_seconds", Help: "Latency of the upstream TTS service", Buckets: ttsBuckets,
		}),
		websocketConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "websocket_connections", Help: "Open chat websocket connections",
		}),
		websocketMessages: counter("websocket_messages_total", "Chat websocket frames by direction", "direction"),
		rateLimited:       counter("rate_limited_total", "Requests rejected by the rate limiter", "path"),
		cacheBackend:      gauge("cache_backend", "1 for the cache backend in use", "backend"),
		cachePurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "cache_purged_entries_total", Help: "Expired database cache rows removed",
		}),
		formSubmissions:     counter("form_submissions_total", "Portfolio form submissions", "form"),
		maintenanceRuns:     counter("maintenance_runs_total", "Maintenance job runs by result", "job", "result"),
		maintenanceDuration: histogram("maintenance_duration_seconds", "Maintenance job duration", "job"),
		maintenanceLastRun:  gauge("maintenance_last_success_timestamp", "Unix time of the last successful run", "job"),
	}
}

func (c *metricSet) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.apiLatency, c.predictions, c.predictionLatency,
		c.ttsRequests, c.ttsLatency,
		c.websocketConnections, c.websocketMessages,
		c.rateLimited, c.cacheBackend, c.cachePurged, c.formSubmissions,
		c.maintenanceRuns, c.maintenanceDuration, c.maintenanceLastRun,
	}
}
