// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Resolution metrics
	ResolutionsTotal  *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	ProviderFallbacks prometheus.Counter

	// Refresh metrics
	RefreshesTotal   *prometheus.CounterVec
	RefreshesDropped prometheus.Counter

	// Card metrics
	ActiveCards  prometheus.Gauge
	CardsCreated prometheus.Counter
	CardsClosed  prometheus.Counter

	// Gateway metrics
	WSConnections  prometheus.Gauge
	WSMessagesSent prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tokencard"
	}

	return &Metrics{
		// Resolution metrics
		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "resolutions_total",
			Help:      "Total number of identifier resolutions by provider and outcome",
		}, []string{"provider", "outcome"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "provider_latency_seconds",
			Help:      "Provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "fallbacks_total",
			Help:      "Total number of times a lower-priority provider was tried",
		}),

		// Refresh metrics
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "refreshes_total",
			Help:      "Total number of card refreshes by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		RefreshesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "dropped_total",
			Help:      "Total number of refresh triggers dropped because a fetch was in flight",
		}),

		// Card metrics
		ActiveCards: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "active",
			Help:      "Current number of active cards",
		}),
		CardsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "created_total",
			Help:      "Total number of cards created",
		}),
		CardsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "closed_total",
			Help:      "Total number of cards closed",
		}),

		// Gateway metrics
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "ws_connections",
			Help:      "Current number of WebSocket connections",
		}),
		WSMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "ws_messages_sent_total",
			Help:      "Total number of WebSocket messages sent to clients",
		}),
	}
}

// RecordResolutionOutcome records one resolution attempt and its latency.
func (m *Metrics) RecordResolutionOutcome(provider, outcome string, seconds float64) {
	if provider == "" {
		provider = "none"
	}
	m.ResolutionsTotal.WithLabelValues(provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFallback increments the provider fallback counter.
func RecordFallback() {
	DefaultMetrics.ProviderFallbacks.Inc()
}
