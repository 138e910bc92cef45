package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Upstream API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	// Notification metrics
	NotificationOps     *prometheus.CounterVec
	NotificationRetries *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Redis metrics
	BrokerPublishes *prometheus.CounterVec

	// Audit metrics
	AuditLogsCleaned prometheus.Counter
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg uses the default prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the travel API",
		}, []string{"resource", "method", "status"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of travel API requests",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"resource", "method"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "circuit_open",
			Help:      "1 while the named circuit breaker is open",
		}, []string{"name"}),

		NotificationOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "operations_total",
			Help:      "Notification mutations by operation and result",
		}, []string{"operation", "result"}),
		NotificationRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "retry_attempts_total",
			Help:      "Total number of retried notification sync calls",
		}, []string{"operation"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Resource cache lookups by resource and result",
		}, []string{"resource", "result"}),

		BrokerPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "publishes_total",
			Help:      "Total number of events published to Redis",
		}, []string{"channel", "status"}),

		AuditLogsCleaned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "logs_cleaned_total",
			Help:      "Total number of audit logs removed by retention cleanup",
		}),
	}
}

// New creates metrics on a private registry, for tests and tools that
// must not touch the default registerer.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, prometheus.NewRegistry())
}
