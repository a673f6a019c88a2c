package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appforge"

// Metrics holds the Prometheus collectors of the service on a private registry
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight   prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	llmRequests    *prometheus.CounterVec
	llmDuration    *prometheus.HistogramVec
	rateLimited    *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	collabRooms    prometheus.Gauge
	collabClients  prometheus.Gauge
	dbQueries      *prometheus.CounterVec
	dbDuration     *prometheus.HistogramVec
	sandboxDeploys *prometheus.CounterVec
}

// NewMetrics creates and registers every collector, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total number of language-model calls.",
		}, []string{"provider", "model", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Duration of language-model calls, including streaming.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider", "model"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stripe",
			Name:      "webhook_events_total",
			Help:      "Stripe webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
		collabRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collab",
			Name:      "rooms",
			Help:      "Open collaboration rooms.",
		}),
		collabClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collab",
			Name:      "clients",
			Help:      "Connected collaboration clients.",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Database statements by operation, table and outcome.",
		}, []string{"operation", "table", "outcome"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database statements.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation", "table"}),
		sandboxDeploys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "deployments_total",
			Help:      "Fragment deployments by template and outcome.",
		}, []string{"template", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.llmRequests,
		m.llmDuration,
		m.rateLimited,
		m.webhookEvents,
		m.collabRooms,
		m.collabClients,
		m.dbQueries,
		m.dbDuration,
		m.sandboxDeploys,
	)
	return m
}

// Registry exposes the registry for extra collectors and tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted increments the in-flight gauge and returns the matching done func
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveRequest records one finished HTTP request. route is the matched
// route template, never the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLLM matches llm.Observer
func (m *Metrics) ObserveLLM(provider llm.Provider, model string, err error, elapsed time.Duration) {
	m.llmRequests.WithLabelValues(string(provider), model, outcome(err)).Inc()
	m.llmDuration.WithLabelValues(string(provider), model).Observe(elapsed.Seconds())
}

// RateLimited counts a rejected request
func (m *Metrics) RateLimited(route string) {
	m.rateLimited.WithLabelValues(route).Inc()
}

// WebhookEvent counts a processed Stripe event
func (m *Metrics) WebhookEvent(eventType, result string) {
	m.webhookEvents.WithLabelValues(eventType, result).Inc()
}

// CollabSize matches realtime.Observer
func (m *Metrics) CollabSize(rooms, clients int) {
	m.collabRooms.Set(float64(rooms))
	m.collabClients.Set(float64(clients))
}

// SandboxDeploy counts a fragment deployment
func (m *Metrics) SandboxDeploy(template string, err error) {
	m.sandboxDeploys.WithLabelValues(template, outcome(err)).Inc()
}

// ObserveQuery records one database statement
func (m *Metrics) ObserveQuery(operation, table string, err error, elapsed time.Duration) {
	if table == "" {
		table = "unknown"
	}
	m.dbQueries.WithLabelValues(operation, table, outcome(err)).Inc()
	m.dbDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
