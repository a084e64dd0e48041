// Package prom implements the observability hooks on top of Prometheus
// collectors.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/depcollect/pkg/observability"
)

// Metrics holds every depcollect collector and satisfies all hook interfaces.
type Metrics struct {
	collectTotal    *prometheus.CounterVec
	collectDuration prometheus.Histogram
	collectedDeps   prometheus.Histogram
	resolveTotal    *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	conflictTotal   *prometheus.CounterVec

	cacheTotal    *prometheus.CounterVec
	cacheSetBytes *prometheus.CounterVec

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

var (
	_ observability.CollectorHooks = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks      = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		collectTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_collect_total",
				Help: "Number of dependency collections by outcome.",
			},
			[]string{"outcome"},
		),
		collectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depcollect_collect_duration_seconds",
				Help:    "Time taken to collect the dependencies of a root artifact.",
				Buckets: prometheus.DefBuckets,
			},
		),
		collectedDeps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depcollect_collect_dependencies",
				Help:    "Number of dependencies recorded per collection.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_resolve_total",
				Help: "Number of repository lookups by outcome.",
			},
			[]string{"outcome"},
		),
		resolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depcollect_resolve_duration_seconds",
				Help:    "Time taken by a single repository lookup.",
				Buckets: prometheus.DefBuckets,
			},
		),
		conflictTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_conflict_total",
				Help: "Number of omitted versions by conflict kind.",
			},
			[]string{"kind"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_cache_requests_total",
				Help: "Number of cache lookups by key type and result.",
			},
			[]string{"type", "result"},
		),
		cacheSetBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_cache_set_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"type"},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_http_requests_total",
				Help: "Number of outgoing HTTP requests by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depcollect_http_request_duration_seconds",
				Help:    "Latency of outgoing HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_http_errors_total",
				Help: "Number of outgoing HTTP requests that failed without a response.",
			},
			[]string{"host"},
		),
	}
	reg.MustRegister(
		m.collectTotal,
		m.collectDuration,
		m.collectedDeps,
		m.resolveTotal,
		m.resolveDuration,
		m.conflictTotal,
		m.cacheTotal,
		m.cacheSetBytes,
		m.httpTotal,
		m.httpDuration,
		m.httpErrors,
	)
	return m
}

// Register installs m as the global collector, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetCollectorHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnCollectStart(context.Context, string) {}

func (m *Metrics) OnCollectComplete(_ context.Context, _ string, count int, d time.Duration, err error) {
	m.collectTotal.WithLabelValues(outcome(err)).Inc()
	m.collectDuration.Observe(d.Seconds())
	if err == nil {
		m.collectedDeps.Observe(float64(count))
	}
}

func (m *Metrics) OnResolve(_ context.Context, _ string, d time.Duration, err error) {
	m.resolveTotal.WithLabelValues(outcome(err)).Inc()
	m.resolveDuration.Observe(d.Seconds())
}

func (m *Metrics) OnConflict(_ context.Context, _ string, kind string) {
	m.conflictTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}
