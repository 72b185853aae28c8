package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/dagflow/pkg/observability"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

// Metrics implements the observability hooks with Prometheus collectors
// registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal    *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	buildNodes     prometheus.Histogram
	cycleEdges     prometheus.Counter
	residualCycles prometheus.Counter

	renderDuration *prometheus.HistogramVec
	renderBytes    *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec

	requestsInFlight prometheus.Gauge
	requestDuration  *prometheus.HistogramVec
}

var (
	_ observability.BuildHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)

// NewMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// buildsTotal counts workflow builds.
		// Labels: status (success, error)
		buildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dagflow",
			Subsystem: "build",
			Name:      "total",
			Help:      "Workflow builds by status",
		}, []string{"status"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dagflow",
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Workflow build latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		buildNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dagflow",
			Subsystem: "build",
			Name:      "nodes",
			Help:      "Node count of built workflows",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		}),
		cycleEdges: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dagflow",
			Subsystem: "build",
			Name:      "cycle_edges_excluded_total",
			Help:      "Edges excluded from the blocking relation because they close a cycle",
		}),
		residualCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dagflow",
			Subsystem: "build",
			Name:      "residual_cycles_total",
			Help:      "Builds that left nodes unordered",
		}),

		// Labels: format, status
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dagflow",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Render latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"format", "status"}),
		renderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dagflow",
			Subsystem: "render",
			Name:      "bytes",
			Help:      "Size of rendered artifacts",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),

		// Labels: type (definition, view, artifact), event (hit, miss, set)
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dagflow",
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes",
		}, []string{"type", "event"}),

		requestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dagflow",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served",
		}),
		// Labels: method, route (chi pattern), code
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dagflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

// Register installs m as the global build, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetBuildHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// OnBuildStart implements observability.BuildHooks.
func (m *Metrics) OnBuildStart(context.Context, string, int) {}

// OnBuildComplete implements observability.BuildHooks.
func (m *Metrics) OnBuildComplete(_ context.Context, _ string, stats observability.BuildStats, d time.Duration, err error) {
	if err != nil {
		m.buildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.buildsTotal.WithLabelValues("success").Inc()
	m.buildDuration.Observe(d.Seconds())
	m.buildNodes.Observe(float64(stats.Nodes))
	m.cycleEdges.Add(float64(stats.Excluded))
	if stats.ResidualCycle {
		m.residualCycles.Inc()
	}
}

// OnRenderStart implements observability.BuildHooks.
func (m *Metrics) OnRenderStart(context.Context, string) {}

// OnRenderComplete implements observability.BuildHooks.
func (m *Metrics) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.renderDuration.WithLabelValues(format, status).Observe(d.Seconds())
	if err == nil {
		m.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.requestsInFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requestsInFlight.Dec()
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
