// Package metrics exposes Prometheus collectors for the capture loop, model calls and HTTP server.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
)

// Metrics holds all Prometheus metrics for snapsolve
type Metrics struct {
	// Capture loop metrics
	CyclesTotal   *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec
	EntriesStored prometheus.Gauge

	// Model metrics
	ModelRequests *prometheus.CounterVec
	ModelLatency  *prometheus.HistogramVec

	// Server metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SSEClients          prometheus.Gauge
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			CyclesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "snapsolve_cycles_total",
					Help: "Total number of capture cycles by outcome",
				},
				[]string{"outcome"},
			),
			CycleDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "snapsolve_cycle_duration_seconds",
					Help:    "Duration of capture cycles in seconds",
					Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
				},
				[]string{"outcome"},
			),
			EntriesStored: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "snapsolve_entries_stored",
					Help: "Number of entries in the storage document at last read",
				},
			),

			ModelRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "snapsolve_model_requests_total",
					Help: "Total number of inference requests",
				},
				[]string{"model", "stage", "success"},
			),
			ModelLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "snapsolve_model_latency_seconds",
					Help:    "Inference request latency in seconds",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
				},
				[]string{"model", "stage"},
			),

			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "snapsolve_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "snapsolve_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
			SSEClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "snapsolve_sse_clients",
					Help: "Number of connected dashboard event streams",
				},
			),
		}
	})
	return sharedMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome classifies a cycle error for the outcome label.
func Outcome(err error) string {
	var (
		captureErr  *entities.CaptureError
		upstreamErr *entities.UpstreamError
		storageErr  *entities.StorageError
		parseErr    *entities.ParseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &captureErr):
		return "capture_error"
	case errors.As(err, &upstreamErr):
		return "upstream_error"
	case errors.As(err, &storageErr), errors.As(err, &parseErr):
		return "storage_error"
	default:
		return "error"
	}
}

// ObserveCycle records a finished capture cycle. It matches the
// usecases.WithObserver callback signature.
func (m *Metrics) ObserveCycle(report usecases.CycleReport) {
	outcome := Outcome(report.Err)
	m.CyclesTotal.WithLabelValues(outcome).Inc()
	m.CycleDuration.WithLabelValues(outcome).Observe(report.Duration.Seconds())
}

// RecordModelRequest records one inference call
func (m *Metrics) RecordModelRequest(model, stage string, success bool, latency time.Duration) {
	m.ModelRequests.WithLabelValues(model, stage, strconv.FormatBool(success)).Inc()
	m.ModelLatency.WithLabelValues(model, stage).Observe(latency.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetEntriesStored records the size of the entry list.
func (m *Metrics) SetEntriesStored(n int) {
	m.EntriesStored.Set(float64(n))
}
