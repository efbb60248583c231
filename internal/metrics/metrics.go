package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forte_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"method", "status"})
	aggregationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forte_dashboard_aggregations_total",
		Help: "Total number of dashboard aggregation runs",
	})
	exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forte_report_exports_total",
		Help: "Total number of report export downloads by format",
	}, []string{"format"})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forte_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(requestsTotal, aggregationsTotal, exportsTotal, rateLimitedTotal)
}

// IncRequest increments the handled requests counter.
func IncRequest(method, status string) { requestsTotal.WithLabelValues(method, status).Inc() }

// IncAggregation increments the aggregation runs counter.
func IncAggregation() { aggregationsTotal.Inc() }

// IncExport increments the export downloads counter for a format.
func IncExport(format string) { exportsTotal.WithLabelValues(format).Inc() }

// IncRateLimited increments the rejected requests counter.
func IncRateLimited() { rateLimitedTotal.Inc() }
