// internal/observability/observability.go
package observability

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"authnfilter/internal/config"
	"authnfilter/internal/contextutil"
	"authnfilter/internal/httputils"
	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"
)

// Provider provides observability capabilities
type Provider struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
}

// NewProvider creates a new observability provider
func NewProvider(cfg *config.Config) (*Provider, error) {
	// Create logger
	logger, err := logging.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return nil, err
	}

	// Create metrics collector
	metricsCollector := metrics.NewCollector()

	return &Provider{
		Logger:  logger,
		Metrics: metricsCollector,
	}, nil
}

// Middleware creates an HTTP middleware for request observation
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Extract or create trace and span IDs
		ctx := r.Context()
		traceID := logging.GetTraceIDFromContext(ctx)
		if traceID == "" {
			traceID = logging.NewTraceID()
			ctx = logging.ContextWithTraceID(ctx, traceID)
		}

		spanID := logging.NewSpanID()
		ctx = logging.ContextWithSpanID(ctx, spanID)

		// Honor a request ID supplied by the caller, otherwise mint one
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = contextutil.WithRequestID(ctx, requestID)

		// Attach logger to context
		logger := p.Logger.WithTracing(traceID).With("request_id", requestID)
		ctx = logging.ContextWithLogger(ctx, logger)

		// Create a response wrapper to capture the status code
		wrapper := httputils.NewResponseWriter(w)

		// Add trace information to response headers
		wrapper.Header().Set("X-Trace-ID", traceID)
		wrapper.Header().Set("X-Request-ID", requestID)

		// Log the incoming request
		logger.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Update request with context
		r = r.WithContext(ctx)

		// Call the next handler
		next.ServeHTTP(wrapper, r)

		// Record request duration and status
		duration := time.Since(startTime)

		// Record metrics
		p.Metrics.RecordRequest(r.Method, r.URL.Path, wrapper.StatusCode, duration)

		// Log the completed request
		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"bytes_written", wrapper.BytesWritten,
		)
	})
}

// MetricsHandler returns an HTTP handler for exposing metrics
func (p *Provider) MetricsHandler() http.Handler {
	return metrics.Handler()
}
