// Package metrics holds the prometheus collectors of the enrollment server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "enrollment"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	stepViews       *prometheus.CounterVec
	stepSubmissions *prometheus.CounterVec
	graphqlRequests *prometheus.CounterVec
	graphqlDuration *prometheus.HistogramVec
	flowCompletions *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// New registers every collector on a fresh registry, plus the go and process
// collectors when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
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
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		stepViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_views_total",
			Help:      "Wizard step renders.",
		}, []string{"flow", "step"}),
		stepSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_submissions_total",
			Help:      "Wizard step submissions by outcome.",
		}, []string{"flow", "step", "outcome"}),
		graphqlRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "GraphQL operations by outcome.",
		}, []string{"operation", "outcome"}),
		graphqlDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_request_duration_seconds",
			Help:      "Duration of GraphQL operations.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		}, []string{"operation"}),
		flowCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_completions_total",
			Help:      "Flows walked to completion.",
		}, []string{"flow"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the submit limiter.",
		}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.stepViews,
		m.stepSubmissions,
		m.graphqlRequests,
		m.graphqlDuration,
		m.flowCompletions,
		m.rateLimited,
	)
	if withRuntime {
		m.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Handler exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordStepView(flow, step string) {
	m.stepViews.WithLabelValues(flow, step).Inc()
}

func (m *Metrics) RecordStepSubmission(flow, step, outcome string) {
	m.stepSubmissions.WithLabelValues(flow, step, outcome).Inc()
}

func (m *Metrics) RecordFlowCompletion(flow string) {
	m.flowCompletions.WithLabelValues(flow).Inc()
}

func (m *Metrics) RecordRateLimited() { m.rateLimited.Inc() }

// ObserveGraphQL matches graphql.Observer.
func (m *Metrics) ObserveGraphQL(operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.graphqlRequests.WithLabelValues(operation, outcome).Inc()
	m.graphqlDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
