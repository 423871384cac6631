// Package metrics holds the Prometheus instruments for the site builder.
// Collectors live on their own registry so tests and multiple servers in one
// process do not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "simplesite"

// Metrics records API requests and publish outcomes.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	publishTotal    *prometheus.CounterVec
	publishDuration prometheus.Histogram
}

// New registers every instrument on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "API requests by method, route pattern and status code.",
			}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request latency by method and route pattern.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_total",
				Help:      "Publish attempts by outcome.",
			}, []string{"outcome"}),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "publish_duration_seconds",
				Help:      "Time spent rendering and uploading a page.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.publishTotal,
		m.publishDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest implements api.MetricsCollector.
func (m *Metrics) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePublish implements simplesite.PublishObserver.
func (m *Metrics) ObservePublish(outcome string, seconds float64) {
	m.publishTotal.WithLabelValues(outcome).Inc()
	m.publishDuration.Observe(seconds)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
