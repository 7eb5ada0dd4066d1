// Package metrics provides Prometheus metrics collection for HTTP server monitoring.
// It exports three metrics for tracking HTTP request performance:
//   - http_requests_total: Counter with method, route, and status labels
//   - http_request_duration_seconds: Histogram with method, route, and status labels
//   - compute_in_flight_requests: Gauge for concurrent /compute requests
//
// All metrics live on an explicit Registry instance that is passed to the
// middleware and the exposition handler, never on the package default registry.
package metrics

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the service's metrics and serializes them for scraping
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ComputeInFlight prometheus.Gauge
}

// NewRegistry creates a registry with all service metrics registered.
// Registering two metrics with the same name fails with
// prometheus.AlreadyRegisteredError.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),

		ComputeInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "compute_in_flight_requests",
				Help: "Current in-flight /compute requests",
			},
		),
	}

	for _, collector := range []prometheus.Collector{
		r.RequestsTotal,
		r.RequestDuration,
		r.ComputeInFlight,
	} {
		if err := r.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return r, nil
}

// Register adds an extra collector to the registry. Duplicate metric names
// are rejected.
func (r *Registry) Register(collector prometheus.Collector) error {
	return r.registry.Register(collector)
}

// Gatherer exposes the underlying gatherer, mainly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ContentType returns the content type of the text exposition format
func (r *Registry) ContentType() string {
	return string(expfmt.NewFormat(expfmt.TypeTextPlain))
}

// Serialize renders the current metric values in the text exposition format.
// Families come back from Gather sorted by name, so output is deterministic
// and two serializations with no intervening mutation are byte-identical.
// An empty registry serializes to empty output.
func (r *Registry) Serialize() ([]byte, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return nil, fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}

	return buf.Bytes(), nil
}
