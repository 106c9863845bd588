package monitoring

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "aidemo"

// Options configures a Module.
type Options struct {
	// Namespace prefixes every metric name. Empty means "aidemo".
	Namespace string
	// Service, when set, is attached to every series as a const "service" label so the
	// chat server and the portfolio can share one scrape job.
	Service string
	// SkipRuntimeCollectors leaves out the Go runtime and process collectors.
	SkipRuntimeCollectors bool
}

// Module owns one process's Prometheus registry, summary counters and health probes.
type Module struct {
	registry *prometheus.Registry
	metrics  *metricSet
	stats    *statStore
	health   *HealthManager
}

func NewModule(opts Options) (*Module, error) {
	if opts.Namespace == "" {
		opts.Namespace = defaultNamespace
	}

	registry := prometheus.NewRegistry()
	var reg prometheus.Registerer = registry
	if opts.Service != "" {
		reg = prometheus.WrapRegistererWith(prometheus.Labels{"service": opts.Service}, registry)
	}

	metrics := newMetricSet(opts.Namespace)
	toRegister := metrics.all()
	if !opts.SkipRuntimeCollectors {
		toRegister = append(toRegister,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range toRegister {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &Module{
		registry: registry,
		metrics:  metrics,
		stats:    newStatStore(),
		health:   NewHealthManager(),
	}, nil
}

// Handler serves the Prometheus text exposition. A nil module answers 503.
func (m *Module) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "monitoring disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Module) Health() *HealthManager {
	if m == nil {
		return nil
	}
	return m.health
}

// Summary returns the in-process activity counters behind /metrics/summary.
func (m *Module) Summary() Summary {
	if m == nil {
		return emptySummary()
	}
	return m.stats.summary()
}

// active is the module the package-level Record* helpers report to.
var active atomic.Pointer[Module]

// SetModule makes module the target of the Record* helpers. nil is ignored.
func SetModule(module *Module) {
	if module != nil {
		active.Store(module)
	}
}

func current() *Module {
	return active.Load()
}
