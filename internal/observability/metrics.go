// Package observability provides the process-wide Prometheus metrics
// registry and OpenTelemetry tracer construction for calendar-backend.
// Collector wraps typed CounterVec/HistogramVec/Counter fields,
// registered once via registry.MustRegister, covering the SSR, cache,
// storage, and event-stream concerns this repo has.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every metric the server exposes on /metrics. There is
// exactly one Collector per process, built once in cmd/server/main.go and
// threaded explicitly into the components that record against it; nothing
// here reaches for a global.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SSRRendersTotal    *prometheus.CounterVec
	SSRRenderDuration  prometheus.Histogram
	SSRWorkerCapacity  prometheus.Gauge

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	StorageOpsTotal    *prometheus.CounterVec
	StorageOpsDuration *prometheus.HistogramVec

	EventsPublishedTotal *prometheus.CounterVec
	SSESubscribers       prometheus.Gauge
}

// NewCollector builds a fresh registry and registers every metric under
// namespace (the Prometheus metric prefix, e.g. "calendar_backend").
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests by route, method, and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		SSRRendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ssr_renders_total", Help: "SSR render attempts by outcome (ok, timeout, overloaded, payload_too_large, error).",
		}, []string{"outcome"}),
		SSRRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "ssr_render_duration_seconds", Help: "SSR render latency for successful renders.",
			Buckets: prometheus.DefBuckets,
		}),
		SSRWorkerCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ssr_workers_with_capacity", Help: "Number of SSR workers currently able to accept a render.",
		}),
		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hits_total", Help: "Cache hits by key class.",
		}, []string{"class"}),
		CacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_misses_total", Help: "Cache misses by key class.",
		}, []string{"class"}),
		StorageOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "storage_operations_total", Help: "Storage operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		StorageOpsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "storage_operation_duration_seconds", Help: "Storage operation latency by name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total", Help: "CalendarEvents published by kind.",
		}, []string{"kind"}),
		SSESubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sse_subscribers", Help: "Currently connected SSE subscribers across all calendars.",
		}),
	}

	registry.MustRegister(
		c.HTTPRequestsTotal, c.HTTPRequestDuration,
		c.SSRRendersTotal, c.SSRRenderDuration, c.SSRWorkerCapacity,
		c.CacheHitsTotal, c.CacheMissesTotal,
		c.StorageOpsTotal, c.StorageOpsDuration,
		c.EventsPublishedTotal, c.SSESubscribers,
	)
	return c
}

// Registry exposes the underlying *prometheus.Registry for mounting
// promhttp.HandlerFor at /metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveHTTP records one completed HTTP request.
func (c *Collector) ObserveHTTP(route, method, status string, duration time.Duration) {
	c.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// ObserveSSRRender records one render attempt's outcome and, for
// successful renders, its latency.
func (c *Collector) ObserveSSRRender(outcome string, duration time.Duration) {
	c.SSRRendersTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.SSRRenderDuration.Observe(duration.Seconds())
	}
}

// ObserveStorageOp records one storage call's outcome and latency.
func (c *Collector) ObserveStorageOp(operation, outcome string, duration time.Duration) {
	c.StorageOpsTotal.WithLabelValues(operation, outcome).Inc()
	c.StorageOpsDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncEventPublished implements eventstream.EventCounter.
func (c *Collector) IncEventPublished(kind string) {
	c.EventsPublishedTotal.WithLabelValues(kind).Inc()
}

