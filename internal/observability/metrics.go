// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "merchant_agent"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Tool metrics
	ToolCalls   *prometheus.CounterVec
	ToolLatency *prometheus.HistogramVec
	CacheEvents *prometheus.CounterVec

	// Forecast metrics
	ForecastPeriods prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Artifact metrics
	ArtifactLoadedAt prometheus.Gauge
	HistoryRows      prometheus.Gauge
}

// NewMetrics registers all metrics on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers all metrics on reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total number of tool invocations by tool and outcome",
		}, []string{"tool", "status"}),
		ToolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "call_duration_seconds",
			Help:      "Tool invocation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"tool"}),
		CacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Tool result cache lookups by tool and result",
		}, []string{"tool", "result"}),
		ForecastPeriods: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "periods",
			Help:      "Requested forecast horizon in days",
			Buckets:   []float64{1, 7, 14, 30, 60, 90, 180, 365},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ArtifactLoadedAt: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "artifacts",
			Name:      "loaded_timestamp",
			Help:      "Unix timestamp of the last artifact load",
		}),
		HistoryRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "artifacts",
			Name:      "history_rows",
			Help:      "Number of sales history rows loaded",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool, status string, seconds float64) {
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolLatency.WithLabelValues(tool).Observe(seconds)
}

// RecordCache records a cache lookup ("hit", "miss" or "error").
func (m *Metrics) RecordCache(tool, result string) {
	m.CacheEvents.WithLabelValues(tool, result).Inc()
}

func (m *Metrics) RecordHTTP(method, route, status string, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(seconds)
}
