// internal/authn/authenticator.go
package authn

import (
	"strings"

	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"
)

// spiffePrefix is the scheme prefix of a well-formed SPIFFE identity.
const spiffePrefix = "spiffe://"

// Authenticator produces a combined authentication result for one request.
// Concrete strategies (peer, origin) decide which validation primitives to
// invoke and in what order.
type Authenticator interface {
	// Run validates the request against this strategy, writing into the
	// payload only on success
	Run(payload *Payload) bool
}

// Base implements the two validation primitives shared by all authenticator
// strategies. It never mutates the payload on failure.
type Base struct {
	fctx    *FilterContext
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewBase creates the shared validation primitives over one request's context.
func NewBase(fctx *FilterContext, logger *logging.Logger, collector *metrics.Collector) *Base {
	return &Base{
		fctx:    fctx,
		logger:  logger.WithModule("authn"),
		metrics: collector,
	}
}

// ValidateX509 checks the transport identity against the mutual TLS
// requirement. On success with a presented certificate it records the
// normalized peer identity in payload.X509.
func (b *Base) ValidateX509(req MutualTLSRequirement, payload *Payload) bool {
	conn := b.fctx.Connection()

	if !conn.IsEncrypted() {
		b.logger.Debug("Connection is not encrypted, x509 validation failed")
		b.metrics.RecordValidation(metrics.PathX509, false)
		return false
	}

	if !conn.HasPeerCertificate() {
		// TLS without a client certificate satisfies the requirement only
		// when the policy allows plain TLS; there is no identity to report
		// either way.
		if !req.AllowTLS {
			b.logger.Debug("Peer certificate required but not presented")
			b.metrics.RecordValidation(metrics.PathX509, false)
			return false
		}
		b.metrics.RecordValidation(metrics.PathX509, true)
		return true
	}

	// The SPIFFE scheme is stripped when present; anything else, including
	// malformed SPIFFE-looking subjects such as "spiffe:foo", is kept
	// verbatim.
	user := strings.TrimPrefix(conn.PeerCertificateSubjectURI(), spiffePrefix)

	payload.X509 = &X509Payload{User: user}
	b.metrics.RecordValidation(metrics.PathX509, true)
	return true
}

// ValidateJwt resolves the verified claims header configured for the
// requirement's issuer and assembles the token identity. On success it
// records the identity in payload.Jwt.
func (b *Base) ValidateJwt(req JwtRequirement, payload *Payload) bool {
	location, ok := b.fctx.JwtPayloadLocation(req.Issuer)
	if !ok {
		b.logger.Debug("No claims header configured for issuer", "issuer", req.Issuer)
		b.metrics.RecordValidation(metrics.PathJWT, false)
		return false
	}

	encoded, ok := b.fctx.Headers().Get(location)
	if !ok {
		b.logger.Debug("Claims header absent from request", "header", location)
		b.metrics.RecordValidation(metrics.PathJWT, false)
		return false
	}

	claims, err := DecodeClaims(encoded)
	if err != nil {
		b.logger.Debug("Failed to decode claims header", "header", location, logging.Err(err))
		b.metrics.RecordValidation(metrics.PathJWT, false)
		return false
	}

	// The user is always derived from the caller-supplied issuer, never from
	// an iss claim read back out of the payload.
	jwt := &JwtPayload{
		User:      req.Issuer,
		Presenter: claims["azp"],
		Claims:    claims,
	}
	if sub, ok := claims["sub"]; ok {
		jwt.User = req.Issuer + "/" + sub
	}
	if aud, ok := claims["aud"]; ok {
		jwt.Audiences = []string{aud}
	}

	payload.Jwt = jwt
	b.metrics.RecordValidation(metrics.PathJWT, true)
	return true
}

// Authenticate runs the policy's peer and origin strategies over one request
// and binds the principal. It returns the combined result, or failure when a
// configured strategy could not authenticate the request.
func Authenticate(fctx *FilterContext, policy Policy, logger *logging.Logger, collector *metrics.Collector) (*Result, bool) {
	base := NewBase(fctx, logger, collector)

	peerPayload := &Payload{}
	if !NewPeerAuthenticator(base, policy.Peers).Run(peerPayload) {
		return nil, false
	}

	result := &Result{}
	switch {
	case peerPayload.X509 != nil:
		result.PeerUser = peerPayload.X509.User
	case peerPayload.Jwt != nil:
		result.PeerUser = peerPayload.Jwt.User
	}

	originPayload := &Payload{}
	if !NewOriginAuthenticator(base, policy.Origins).Run(originPayload) {
		return nil, false
	}
	result.Origin = originPayload.Jwt

	switch policy.Binding {
	case BindOrigin:
		if result.Origin != nil {
			result.Principal = result.Origin.User
		}
	default:
		result.Principal = result.PeerUser
	}

	return result, true
}
