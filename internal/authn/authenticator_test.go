package authn_test

import (
	"testing"

	"authnfilter/internal/authn"
	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer     = "issuer@foo.com"
	claimsHeader   = "Sec-Authn-Userinfo"
	testClaimsJSON = `{
		"iss": "issuer@foo.com",
		"sub": "sub@foo.com",
		"aud": "aud1",
		"non-string-will-be-ignored": 1512754205,
		"some-other-string-claims": "some-claims-kept"
	}`
)

// fakeConn is a test double for the transport view.
type fakeConn struct {
	encrypted  bool
	hasCert    bool
	subjectURI string
}

func (c fakeConn) IsEncrypted() bool { return c.encrypted }
func (c fakeConn) HasPeerCertificate() bool { return c.hasCert }
func (c fakeConn) PeerCertificateSubjectURI() string { return c.subjectURI }

// fakeHeaders is a test double for the header view.
type fakeHeaders map[string]string

func (h fakeHeaders) Get(name string) (string, bool) {
	value, ok := h[name]
	return value, ok
}

func newTestBase(t *testing.T, conn authn.ConnectionInfo, headers fakeHeaders, locations map[string]string) *authn.Base {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	fctx := authn.NewFilterContext(conn, headers, authn.FilterConfig{JwtPayloadLocations: locations})
	return authn.NewBase(fctx, logger, metrics.NewCollector())
}

func TestValidateX509OnPlaintextConnection(t *testing.T) {
	for _, allowTLS := range []bool{false, true} {
		base := newTestBase(t, fakeConn{encrypted: false}, nil, nil)
		payload := &authn.Payload{}

		ok := base.ValidateX509(authn.MutualTLSRequirement{AllowTLS: allowTLS}, payload)

		assert.False(t, ok, "allowTLS=%v", allowTLS)
		assert.Equal(t, authn.Payload{}, *payload, "payload must stay untouched on failure")
	}
}

func TestValidateX509OnTLSConnectionWithNoPeerCert(t *testing.T) {
	conn := fakeConn{encrypted: true, hasCert: false}

	t.Run("mutual TLS required", func(t *testing.T) {
		base := newTestBase(t, conn, nil, nil)
		payload := &authn.Payload{}

		assert.False(t, base.ValidateX509(authn.MutualTLSRequirement{}, payload))
		assert.Equal(t, authn.Payload{}, *payload)
	})

	t.Run("plain TLS allowed", func(t *testing.T) {
		base := newTestBase(t, conn, nil, nil)
		payload := &authn.Payload{}

		assert.True(t, base.ValidateX509(authn.MutualTLSRequirement{AllowTLS: true}, payload))
		assert.Nil(t, payload.X509, "no certificate means no identity to report")
	})
}

func TestValidateX509ExtractsPeerIdentity(t *testing.T) {
	tests := []struct {
		name       string
		subjectURI string
		wantUser   string
	}{
		{"spiffe id", "spiffe://foo", "foo"},
		{"spiffe id with path", "spiffe://cluster.local/ns/default/sa/bookinfo", "cluster.local/ns/default/sa/bookinfo"},
		{"malformed spiffe id kept verbatim", "spiffe:foo", "spiffe:foo"},
		{"plain subject", "foo", "foo"},
		{"empty subject", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The certificate wins regardless of whether plain TLS would
			// have been acceptable.
			for _, allowTLS := range []bool{false, true} {
				conn := fakeConn{encrypted: true, hasCert: true, subjectURI: tt.subjectURI}
				base := newTestBase(t, conn, nil, nil)
				payload := &authn.Payload{}

				require.True(t, base.ValidateX509(authn.MutualTLSRequirement{AllowTLS: allowTLS}, payload))
				require.NotNil(t, payload.X509)
				assert.Equal(t, tt.wantUser, payload.X509.User)
				assert.Nil(t, payload.Jwt)
			}
		})
	}
}

func TestValidateX509Idempotent(t *testing.T) {
	conn := fakeConn{encrypted: true, hasCert: true, subjectURI: "spiffe://foo"}
	base := newTestBase(t, conn, nil, nil)

	first := &authn.Payload{}
	second := &authn.Payload{}
	require.True(t, base.ValidateX509(authn.MutualTLSRequirement{}, first))
	require.True(t, base.ValidateX509(authn.MutualTLSRequirement{}, second))
	assert.Equal(t, first, second)
}

func TestValidateJwtWithEmptyLocations(t *testing.T) {
	base := newTestBase(t, fakeConn{}, fakeHeaders{}, nil)
	payload := &authn.Payload{}

	assert.False(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Equal(t, authn.Payload{}, *payload)
}

func TestValidateJwtWithUnknownIssuer(t *testing.T) {
	locations := map[string]string{"other@bar.com": claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(testClaimsJSON)}
	base := newTestBase(t, fakeConn{}, headers, locations)
	payload := &authn.Payload{}

	assert.False(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Equal(t, authn.Payload{}, *payload)
}

func TestValidateJwtWithMissingHeader(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	base := newTestBase(t, fakeConn{}, fakeHeaders{}, locations)
	payload := &authn.Payload{}

	assert.False(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Equal(t, authn.Payload{}, *payload)
}

func TestValidateJwtWithMalformedHeader(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}

	for name, value := range map[string]string{
		"invalid base64": "%%%not-base64%%%",
		"invalid json":   encode(`{"iss": `),
		"non-object":     encode(`["aud1"]`),
	} {
		t.Run(name, func(t *testing.T) {
			headers := fakeHeaders{claimsHeader: value}
			base := newTestBase(t, fakeConn{}, headers, locations)
			payload := &authn.Payload{}

			assert.False(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
			assert.Equal(t, authn.Payload{}, *payload)
		})
	}
}

func TestValidateJwtAssemblesTokenIdentity(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(testClaimsJSON)}
	base := newTestBase(t, fakeConn{}, headers, locations)
	payload := &authn.Payload{}

	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	require.NotNil(t, payload.Jwt)

	assert.Equal(t, "issuer@foo.com/sub@foo.com", payload.Jwt.User)
	assert.Equal(t, []string{"aud1"}, payload.Jwt.Audiences)
	assert.Equal(t, "", payload.Jwt.Presenter)
	assert.Equal(t, map[string]string{
		"iss":                      "issuer@foo.com",
		"sub":                      "sub@foo.com",
		"aud":                      "aud1",
		"some-other-string-claims": "some-claims-kept",
	}, payload.Jwt.Claims)
	assert.Nil(t, payload.X509)
}

func TestValidateJwtWithoutSubClaim(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(`{"aud": "aud1"}`)}
	base := newTestBase(t, fakeConn{}, headers, locations)
	payload := &authn.Payload{}

	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Equal(t, testIssuer, payload.Jwt.User, "user falls back to the issuer alone")
}

func TestValidateJwtWithoutAudClaim(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(`{"sub": "sub@foo.com"}`)}
	base := newTestBase(t, fakeConn{}, headers, locations)
	payload := &authn.Payload{}

	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Empty(t, payload.Jwt.Audiences)
}

func TestValidateJwtWithPresenter(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(`{"sub": "sub@foo.com", "azp": "presenter@foo.com"}`)}
	base := newTestBase(t, fakeConn{}, headers, locations)
	payload := &authn.Payload{}

	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, payload))
	assert.Equal(t, "presenter@foo.com", payload.Jwt.Presenter)
}

func TestValidateJwtIdempotent(t *testing.T) {
	locations := map[string]string{testIssuer: claimsHeader}
	headers := fakeHeaders{claimsHeader: encode(testClaimsJSON)}
	base := newTestBase(t, fakeConn{}, headers, locations)

	first := &authn.Payload{}
	second := &authn.Payload{}
	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, first))
	require.True(t, base.ValidateJwt(authn.JwtRequirement{Issuer: testIssuer}, second))
	assert.Equal(t, first, second)
}
