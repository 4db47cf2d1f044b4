// internal/filter/filter.go

// Package filter applies the authentication policy to inbound requests and
// records the authentication result for downstream handlers.
package filter

import (
	"net/http"

	"authnfilter/internal/authn"
	"authnfilter/internal/authn/httpconn"
	"authnfilter/internal/contextutil"
	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"
)

// Filter is the request authentication filter.
type Filter struct {
	logger  *logging.Logger
	metrics *metrics.Collector
	enabled bool
	config  authn.FilterConfig
	policy  authn.Policy
}

// Config holds filter configuration
type Config struct {
	// Enabled indicates whether the authentication filter is enabled
	Enabled bool

	// JwtPayloadLocations maps issuers to the headers carrying their
	// verified claims
	JwtPayloadLocations map[string]string

	// Policy describes the authentication methods to apply
	Policy authn.Policy
}

// New creates a new authentication filter
func New(config Config, logger *logging.Logger, collector *metrics.Collector) *Filter {
	return &Filter{
		logger:  logger.WithModule("filter"),
		metrics: collector,
		enabled: config.Enabled,
		config:  authn.FilterConfig{JwtPayloadLocations: config.JwtPayloadLocations},
		policy:  config.Policy,
	}
}

// Middleware returns an http.Handler middleware that authenticates each
// request against the configured policy. Requests that fail authentication
// are rejected with 401; successful requests carry the authentication result
// in their context.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !f.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := logging.LoggerFromContext(ctx)
		if logger == nil {
			logger = f.logger
		}

		fctx := authn.NewFilterContext(
			httpconn.FromRequest(r),
			httpconn.NewHeaders(r.Header),
			f.config,
		)

		result, ok := authn.Authenticate(fctx, f.policy, logger, f.metrics)
		if !ok {
			logger.Debug("Request failed authentication", "path", r.URL.Path)
			f.metrics.RecordRejection("authn_failed")
			http.Error(w, "Authentication failed", http.StatusUnauthorized)
			return
		}

		logger.Debug("Request authenticated",
			"principal", result.Principal,
			"peer", result.PeerUser,
		)

		ctx = contextutil.WithResult(ctx, result)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
