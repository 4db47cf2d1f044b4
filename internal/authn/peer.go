// internal/authn/peer.go
package authn

// PeerAuthenticator resolves the peer identity of a request: who is on the
// other end of the connection. Methods are tried in order and the first one
// to succeed wins. An empty method list means peer authentication is not
// required and always succeeds without reporting an identity.
type PeerAuthenticator struct {
	*Base
	methods []Method
}

// NewPeerAuthenticator creates a peer authentication strategy over the shared
// validation primitives.
func NewPeerAuthenticator(base *Base, methods []Method) *PeerAuthenticator {
	return &PeerAuthenticator{
		Base:    base,
		methods: methods,
	}
}

// Run implements Authenticator.
func (a *PeerAuthenticator) Run(payload *Payload) bool {
	if len(a.methods) == 0 {
		return true
	}

	for _, method := range a.methods {
		switch {
		case method.MTLS != nil:
			if a.ValidateX509(*method.MTLS, payload) {
				return true
			}
		case method.JWT != nil:
			if a.ValidateJwt(*method.JWT, payload) {
				return true
			}
		}
	}

	return false
}
