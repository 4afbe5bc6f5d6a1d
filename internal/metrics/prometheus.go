package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermall_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supermall_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)
	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermall_fetch_failures_total",
			Help: "Document store calls that failed, by module and operation.",
		},
		[]string{"module", "op"},
	)
	eventsHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supermall_events_handled_total",
			Help: "Stream events handled by workers, by worker and outcome.",
		},
		[]string{"worker", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(fetchFailuresTotal)
	prometheus.MustRegister(eventsHandledTotal)
}

// RecordRequest records one served HTTP request
func RecordRequest(method, route string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordFetchFailure counts a failed store call
func RecordFetchFailure(module, op string) {
	fetchFailuresTotal.WithLabelValues(module, op).Inc()
}

// RecordEvent counts a handled stream event; outcome is "ok", "skipped" or "error"
func RecordEvent(worker, outcome string) {
	eventsHandledTotal.WithLabelValues(worker, outcome).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
