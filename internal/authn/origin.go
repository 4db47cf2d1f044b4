// internal/authn/origin.go
package authn

// OriginAuthenticator resolves the origin identity of a request: who the end
// credential (a verified token) belongs to, as opposed to the immediate peer.
// Only token methods apply; methods are tried in order, first success wins.
// An empty method list means origin authentication is not required.
type OriginAuthenticator struct {
	*Base
	methods []Method
}

// NewOriginAuthenticator creates an origin authentication strategy over the
// shared validation primitives.
func NewOriginAuthenticator(base *Base, methods []Method) *OriginAuthenticator {
	return &OriginAuthenticator{
		Base:    base,
		methods: methods,
	}
}

// Run implements Authenticator.
func (a *OriginAuthenticator) Run(payload *Payload) bool {
	if len(a.methods) == 0 {
		return true
	}

	for _, method := range a.methods {
		if method.JWT == nil {
			continue
		}
		if a.ValidateJwt(*method.JWT, payload) {
			return true
		}
	}

	return false
}
