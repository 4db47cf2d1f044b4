package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"authnfilter/internal/config"
	"authnfilter/internal/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	cfg := &config.Config{}
	cfg.Observability.LogLevel = "error"
	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	return provider
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	provider := newTestProvider(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextutil.GetRequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	provider.Middleware(next).ServeHTTP(w, r)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestMiddlewareHonorsCallerRequestID(t *testing.T) {
	provider := newTestProvider(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextutil.GetRequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "caller-supplied-id")
	w := httptest.NewRecorder()
	provider.Middleware(next).ServeHTTP(w, r)

	assert.Equal(t, "caller-supplied-id", seen)
	assert.Equal(t, "caller-supplied-id", w.Header().Get("X-Request-ID"))
}
