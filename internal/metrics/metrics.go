// Package metrics owns the Prometheus registry for the service: HTTP request
// counters and latencies plus the outcome of the startup secret load.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_service"

// Metrics groups the collectors registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	secretsLoads    *prometheus.CounterVec
	secretsKeys     prometheus.Gauge
	secretsDuration prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		secretsLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secrets_loads_total",
			Help:      "Startup secret loads, by outcome.",
		}, []string{"outcome"}),
		secretsKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "secrets_keys_applied",
			Help:      "Secret keys merged into the environment at startup.",
		}),
		secretsDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "secrets_load_duration_seconds",
			Help:      "Time spent loading secrets at startup.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.secretsLoads,
		m.secretsKeys,
		m.secretsDuration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordSecretsLoad records the outcome of the startup secret load.
func (m *Metrics) RecordSecretsLoad(outcome string, keys int, elapsed time.Duration) {
	m.secretsLoads.WithLabelValues(outcome).Inc()
	m.secretsKeys.Set(float64(keys))
	m.secretsDuration.Set(elapsed.Seconds())
}
