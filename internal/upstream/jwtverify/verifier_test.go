package jwtverify

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocation = "Sec-Authn-Userinfo"

func newDisabledVerifier(t *testing.T, config Config) *Verifier {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	config.Enabled = false
	v, err := New(config, logger, metrics.NewCollector())
	require.NoError(t, err)
	return v
}

func TestNewRequiresIssuerWhenEnabled(t *testing.T) {
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	_, err = New(Config{Enabled: true, ClientID: "client", Location: testLocation}, logger, metrics.NewCollector())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no issuer")
}

func TestNewRequiresClientIDWhenEnabled(t *testing.T) {
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	_, err = New(Config{Enabled: true, Issuer: "https://issuer.example", Location: testLocation}, logger, metrics.NewCollector())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no client ID")
}

func TestNewRequiresLocationWhenEnabled(t *testing.T) {
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	_, err = New(Config{Enabled: true, Issuer: "https://issuer.example", ClientID: "client"}, logger, metrics.NewCollector())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no claims header location")
}

func TestMiddlewareStripsClientSuppliedClaimsHeader(t *testing.T) {
	v := newDisabledVerifier(t, Config{Protected: []string{testLocation}})

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(testLocation)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(testLocation, "forged-by-client")

	v.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Empty(t, seen, "a client-supplied claims header must never reach the filter")
}

func TestMiddlewareStripsAllConfiguredClaimsHeaders(t *testing.T) {
	const otherLocation = "Sec-Other-Userinfo"
	v := newDisabledVerifier(t, Config{Protected: []string{testLocation, otherLocation}})

	var seen http.Header
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(testLocation, "forged-by-client")
	r.Header.Set(otherLocation, "also-forged")
	r.Header.Set("X-Unrelated", "kept")

	v.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Empty(t, seen.Get(testLocation))
	assert.Empty(t, seen.Get(otherLocation))
	assert.Equal(t, "kept", seen.Get("X-Unrelated"))
}

func TestMiddlewareProtectsWriteLocation(t *testing.T) {
	// The write location is protected even when it is not listed explicitly.
	v := newDisabledVerifier(t, Config{Location: testLocation})

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(testLocation)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(testLocation, "forged-by-client")

	v.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Empty(t, seen)
}

func TestMiddlewareDisabledPassesThrough(t *testing.T) {
	v := newDisabledVerifier(t, Config{Protected: []string{testLocation}})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer some-token")

	w := httptest.NewRecorder()
	v.Middleware(next).ServeHTTP(w, r)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAudiencesUnmarshal(t *testing.T) {
	var single audiences
	require.NoError(t, single.UnmarshalJSON([]byte(`"aud1"`)))
	assert.Equal(t, audiences{"aud1"}, single)

	var multiple audiences
	require.NoError(t, multiple.UnmarshalJSON([]byte(`["aud1", "aud2"]`)))
	assert.Equal(t, audiences{"aud1", "aud2"}, multiple)

	var invalid audiences
	assert.Error(t, invalid.UnmarshalJSON([]byte(`42`)))
}
