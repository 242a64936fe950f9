package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Latency of gateway HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Authentication form submissions by mode (login|register) and outcome
	// (success|invalid|failed|pending).
	AuthSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_submissions_total",
			Help: "Authentication form submissions.",
		},
		[]string{"mode", "outcome"},
	)

	// Session checks by result (valid|invalid|absent|error).
	SessionChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_checks_total",
			Help: "Session validity checks against the identity API.",
		},
		[]string{"result"},
	)

	// Upstream API calls by service (identity|catalog).
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_upstream_request_duration_seconds",
			Help:    "Latency of calls to the identity and catalog APIs.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "code"},
	)

	initOnce sync.Once
)

// Handler serves the default registry.
var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency, AuthSubmissions, SessionChecks, UpstreamLatency)
	})
}

// InstrumentedClient returns an *http.Client whose round trips are recorded
// in UpstreamLatency under service.
func InstrumentedClient(service string) *http.Client {
	observer := UpstreamLatency.MustCurryWith(prometheus.Labels{"service": service})
	return &http.Client{
		Transport: promhttp.InstrumentRoundTripperDuration(observer, http.DefaultTransport),
	}
}
