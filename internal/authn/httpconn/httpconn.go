// internal/authn/httpconn/httpconn.go

// Package httpconn adapts net/http request state to the narrow views the
// authentication core consumes. Certificate chain validation has already
// happened during the TLS handshake; these adapters only read.
package httpconn

import (
	"crypto/tls"
	"net/http"
)

// Connection is a read-only view over a request's TLS connection state.
type Connection struct {
	state *tls.ConnectionState
}

// NewConnection adapts the TLS state of an inbound request. A nil state means
// the connection is plaintext.
func NewConnection(state *tls.ConnectionState) *Connection {
	return &Connection{state: state}
}

// FromRequest adapts the connection state of an inbound HTTP request.
func FromRequest(r *http.Request) *Connection {
	return NewConnection(r.TLS)
}

// IsEncrypted reports whether the connection uses TLS.
func (c *Connection) IsEncrypted() bool {
	return c.state != nil
}

// HasPeerCertificate reports whether the peer presented a certificate.
func (c *Connection) HasPeerCertificate() bool {
	return c.state != nil && len(c.state.PeerCertificates) > 0
}

// PeerCertificateSubjectURI returns the first URI SAN of the leaf peer
// certificate, or "" when the certificate carries none.
func (c *Connection) PeerCertificateSubjectURI() string {
	leaf := c.state.PeerCertificates[0]
	if len(leaf.URIs) == 0 {
		return ""
	}
	return leaf.URIs[0].String()
}

// Headers is a case-sensitive, read-only view over HTTP request headers.
type Headers struct {
	header http.Header
}

// NewHeaders adapts an http.Header map.
func NewHeaders(header http.Header) Headers {
	return Headers{header: header}
}

// Get returns the first value of the named header. The lookup is an exact map
// lookup; callers are expected to configure header names in the canonical
// form net/http stores them in.
func (h Headers) Get(name string) (string, bool) {
	values, ok := h.header[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
