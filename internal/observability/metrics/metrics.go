package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelStatus  = "status"
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelSuccess = "success"
	LabelReason  = "reason"
)

// Validation path labels
const (
	PathX509 = "x509"
	PathJWT  = "jwt"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authnfilter_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authnfilter_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// ValidationTotal counts identity validation attempts by path and outcome
	ValidationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authnfilter_validation_total",
			Help: "Total number of identity validation attempts",
		},
		[]string{"validation_path", LabelSuccess},
	)

	// RejectionTotal counts requests rejected by the authentication filter
	RejectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authnfilter_rejections_total",
			Help: "Total number of requests rejected by the authentication filter",
		},
		[]string{LabelReason},
	)

	// UpstreamRequestTotal counts requests forwarded to the upstream service
	UpstreamRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authnfilter_upstream_requests_total",
			Help: "Total number of requests forwarded to the upstream service",
		},
		[]string{LabelMethod, "upstream", LabelStatus},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordValidation records one identity validation attempt
func (c *Collector) RecordValidation(validationPath string, success bool) {
	ValidationTotal.WithLabelValues(validationPath, boolToString(success)).Inc()
}

// RecordRejection records a request rejected by the filter
func (c *Collector) RecordRejection(reason string) {
	RejectionTotal.WithLabelValues(reason).Inc()
}

// RecordUpstreamRequest records a request forwarded to the upstream service
func (c *Collector) RecordUpstreamRequest(method, upstream string, status int) {
	UpstreamRequestTotal.WithLabelValues(method, upstream, http.StatusText(status)).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// boolToString converts a boolean to a string representation
func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
