// internal/config/types.go
package config

import (
	"net/url"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration for the inbound listener
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
		// CAPath is the path to the CA certificate for client verification
		CAPath string
	}

	// Upstream holds configuration for the upstream service
	Upstream struct {
		// URL is the URL of the upstream service
		URL *url.URL
		// Timeout is the maximum time to wait for upstream responses
		Timeout time.Duration
	}

	// Authn holds authentication filter configuration
	Authn struct {
		// Enabled indicates whether the authentication filter is enabled
		Enabled bool

		// JwtPayloadLocations maps a token issuer to the header carrying
		// that issuer's verified claims
		JwtPayloadLocations map[string]string

		// Peers lists the accepted peer authentication method specs, in
		// order of preference ("mtls", "tls", or "jwt:<issuer>")
		Peers []string

		// Origins lists the accepted origin authentication method specs
		// ("jwt:<issuer>")
		Origins []string

		// PrincipalBinding selects the source of the request principal
		// ("peer" or "origin")
		PrincipalBinding string
	}

	// Verify holds configuration for the upstream token-verification stage
	Verify struct {
		// Enabled indicates whether bearer token verification is enabled
		Enabled bool
		// Issuer is the token issuer URL
		Issuer string
		// ClientID is the client ID for token validation
		ClientID string
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
	}
}
