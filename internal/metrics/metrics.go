// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons for AuthRejections.
const (
	ReasonMissing   = "missing"
	ReasonMalformed = "malformed"
	ReasonSignature = "signature"
	ReasonExpired   = "expired"
	ReasonForbidden = "forbidden"
)

var (
	// HTTPRequests counts finished requests by route template, method and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_http_requests_total",
			Help: "Total HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes request latency by route template and method.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursehub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// AuthRejections counts requests stopped by the identity or role gates.
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_auth_rejections_total",
			Help: "Requests rejected by authentication or authorization gates.",
		},
		[]string{"reason"},
	)
)

// MustRegister registers every collector with reg. It panics on duplicates.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPDuration, AuthRejections)
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
