// Package metrics exposes Prometheus collectors for tool calls, upstream
// latency and streaming sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	toolCalls       *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	sseSessions     prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordpress_mcp_tool_calls_total",
				Help: "Total number of tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordpress_mcp_upstream_request_duration_seconds",
				Help:    "Duration of WordPress REST calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		sseSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordpress_mcp_sse_sessions_active",
				Help: "Current number of open SSE sessions",
			},
		),
	}
}

// ObserveToolCall counts one tool call.
func (m *Metrics) ObserveToolCall(tool string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// ObserveUpstream records the latency of one WordPress call.
func (m *Metrics) ObserveUpstream(operation string, d time.Duration) {
	m.upstreamLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// SessionOpened and SessionClosed track open SSE streams.
func (m *Metrics) SessionOpened() { m.sseSessions.Inc() }
func (m *Metrics) SessionClosed() { m.sseSessions.Dec() }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
