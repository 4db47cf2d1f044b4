// internal/authn/types.go
package authn

// X509Payload carries the identity extracted from a peer certificate.
type X509Payload struct {
	// User is the normalized transport identity (SPIFFE id without scheme,
	// or the raw subject URI when it is not a well-formed SPIFFE id)
	User string
}

// JwtPayload carries the identity extracted from a verified token's claims.
type JwtPayload struct {
	// User is "<issuer>/<sub>", or just the issuer when the token has no sub claim
	User string

	// Audiences lists the token audiences, one entry per aud value
	Audiences []string

	// Presenter is the authorized presenter of the token (azp claim), if any
	Presenter string

	// Claims holds every string-valued claim of the token
	Claims map[string]string
}

// Payload is the shared output of the validation primitives. Each validator
// fills in its own slice on success and leaves the payload untouched on
// failure; either, both, or neither slice may end up populated.
type Payload struct {
	X509 *X509Payload
	Jwt  *JwtPayload
}

// MutualTLSRequirement describes what the transport must provide.
type MutualTLSRequirement struct {
	// AllowTLS makes a TLS connection without a client certificate acceptable.
	// When false, a peer certificate is mandatory.
	AllowTLS bool
}

// JwtRequirement identifies which verified token to consult, by issuer.
type JwtRequirement struct {
	Issuer string
}

// Method is one way of authenticating a peer or origin. Exactly one of the
// fields is set.
type Method struct {
	MTLS *MutualTLSRequirement
	JWT  *JwtRequirement
}

// PrincipalBinding selects which identity becomes the request principal.
type PrincipalBinding string

const (
	// BindPeer binds the principal to the peer (transport) identity
	BindPeer PrincipalBinding = "peer"

	// BindOrigin binds the principal to the origin (token) identity
	BindOrigin PrincipalBinding = "origin"
)

// Policy describes which authentication methods to try for one request.
type Policy struct {
	// Peers are the accepted peer authentication methods, tried in order
	Peers []Method

	// Origins are the accepted origin authentication methods, tried in order
	Origins []Method

	// Binding selects the source of the request principal
	Binding PrincipalBinding
}

// Result is the combined outcome of a full authentication run.
type Result struct {
	// Principal is the bound identity of the request
	Principal string

	// PeerUser is the authenticated peer identity, if any
	PeerUser string

	// Origin is the authenticated origin token identity, if any
	Origin *JwtPayload
}
