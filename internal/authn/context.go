// internal/authn/context.go
package authn

// ConnectionInfo is a read-only view of the transport connection's TLS state.
// Production code adapts the host's connection object; tests implement it
// directly.
type ConnectionInfo interface {
	// IsEncrypted reports whether the connection uses TLS
	IsEncrypted() bool

	// HasPeerCertificate reports whether the peer presented a certificate
	HasPeerCertificate() bool

	// PeerCertificateSubjectURI returns the subject URI of the peer
	// certificate; only meaningful when HasPeerCertificate is true
	PeerCertificateSubjectURI() string
}

// HeaderAccessor is a read-only, case-sensitive view of the request headers.
type HeaderAccessor interface {
	// Get returns the raw value of the named header and whether it is present
	Get(name string) (string, bool)
}

// FilterConfig is the per-filter configuration consumed by the validators.
// It is immutable for the lifetime of a request and safe to share across
// concurrently processing requests.
type FilterConfig struct {
	// JwtPayloadLocations maps a token issuer to the name of the header
	// carrying that issuer's verified, base64-encoded claims
	JwtPayloadLocations map[string]string
}

// FilterContext bundles everything the validators read for one request.
type FilterContext struct {
	conn    ConnectionInfo
	headers HeaderAccessor
	config  FilterConfig
}

// NewFilterContext creates a request-scoped filter context.
func NewFilterContext(conn ConnectionInfo, headers HeaderAccessor, config FilterConfig) *FilterContext {
	return &FilterContext{
		conn:    conn,
		headers: headers,
		config:  config,
	}
}

// Connection returns the transport view for this request.
func (c *FilterContext) Connection() ConnectionInfo {
	return c.conn
}

// Headers returns the header view for this request.
func (c *FilterContext) Headers() HeaderAccessor {
	return c.headers
}

// JwtPayloadLocation returns the header name configured for the issuer's
// verified claims, and whether the issuer is configured at all.
func (c *FilterContext) JwtPayloadLocation(issuer string) (string, bool) {
	location, ok := c.config.JwtPayloadLocations[issuer]
	return location, ok
}
