package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for AuthEvents.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// HTTPRequestCounter conta o total de requisições HTTP.
	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapi_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration observa a duração das requisições HTTP.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todoapi_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AuthEvents counts register/login/reset attempts by outcome.
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapi_auth_events_total",
			Help: "Authentication events (register, login, reset_request, reset_consume) by outcome.",
		},
		[]string{"event", "outcome"},
	)

	// TodoOperations counts successful todo mutations and reads.
	TodoOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapi_todo_operations_total",
			Help: "Todo operations completed, by operation.",
		},
		[]string{"operation"},
	)

	// AppInfo expõe informações sobre a aplicação.
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todoapi_app_info",
			Help: "Information about the todo API application.",
		},
		[]string{"version"},
	)
)

// SetAppVersion publishes the running version on AppInfo.
func SetAppVersion(version string) {
	if version == "" {
		version = "unknown"
	}
	AppInfo.Reset()
	AppInfo.With(prometheus.Labels{"version": version}).Set(1)
}

// RecordAuthEvent increments AuthEvents for event with a success or failure outcome.
func RecordAuthEvent(event string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	AuthEvents.WithLabelValues(event, outcome).Inc()
}
