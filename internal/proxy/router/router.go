// internal/proxy/router/router.go
package router

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"authnfilter/internal/contextutil"
	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"

	"github.com/gorilla/mux"
)

// Router forwards authenticated requests to the upstream service
type Router struct {
	*mux.Router
	target      *httputil.ReverseProxy
	logger      *logging.Logger
	metrics     *metrics.Collector
	upstreamURL *url.URL
}

// Config holds router configuration
type Config struct {
	// UpstreamURL is the URL of the upstream service
	UpstreamURL *url.URL

	// UpstreamTimeout is the timeout for upstream service requests
	UpstreamTimeout time.Duration
}

// New creates a new router
func New(config Config, logger *logging.Logger, metricsCollector *metrics.Collector) *Router {
	// Create the reverse proxy with proper timeout configuration
	target := httputil.NewSingleHostReverseProxy(config.UpstreamURL)

	// Configure transport with timeouts
	transport := &http.Transport{
		ResponseHeaderTimeout: config.UpstreamTimeout,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	target.Transport = transport

	// Set up upstream request metrics
	target.ModifyResponse = func(resp *http.Response) error {
		if resp.Request != nil {
			metricsCollector.RecordUpstreamRequest(
				resp.Request.Method,
				config.UpstreamURL.String(),
				resp.StatusCode,
			)
		}
		return nil
	}

	r := &Router{
		Router:      mux.NewRouter(),
		target:      target,
		logger:      logger.WithModule("proxy.router"),
		metrics:     metricsCollector,
		upstreamURL: config.UpstreamURL,
	}

	r.setupRoutes()

	return r
}

// setupRoutes configures the proxy routes
func (r *Router) setupRoutes() {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.PathPrefix("/").HandlerFunc(r.forward)
}

// forward proxies one request to the upstream, propagating the authenticated
// principal so the upstream does not have to re-derive it.
func (r *Router) forward(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = r.logger
	}

	if result := contextutil.GetResult(ctx); result != nil && result.Principal != "" {
		req.Header.Set("X-Authenticated-Principal", result.Principal)
		logger.Debug("Forwarding authenticated request",
			"principal", result.Principal,
			"upstream", logging.RedactURL(r.upstreamURL),
		)
	}

	r.target.ServeHTTP(w, req)
}
