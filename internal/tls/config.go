// internal/tls/config.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"authnfilter/internal/observability/logging"
)

// Config holds the TLS configuration for the inbound listener
type Config struct {
	// Logger is the logger to use
	Logger *logging.Logger

	// CAPath is the path to the CA certificate for client verification
	CAPath string

	// CertPath is the path to the server certificate
	CertPath string

	// KeyPath is the path to the server key
	KeyPath string
}

// GetTLSConfig creates a TLS configuration for the server. Client
// certificates are requested and verified when presented, but not required;
// the authentication filter decides whether a missing certificate is
// acceptable for a given request.
func (c *Config) GetTLSConfig() (*tls.Config, error) {
	c.Logger.Debug("Initializing TLS configuration")

	cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load server key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.VerifyClientCertIfGiven,
		MinVersion:   tls.VersionTLS12,
	}

	if c.CAPath != "" {
		clientCAPool := x509.NewCertPool()
		clientCA, err := os.ReadFile(c.CAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read client CA file: %w", err)
		}
		if !clientCAPool.AppendCertsFromPEM(clientCA) {
			return nil, fmt.Errorf("failed to parse client CA file: %s", c.CAPath)
		}
		tlsConfig.ClientCAs = clientCAPool
		c.Logger.Debug("Client CA loaded for peer certificate verification", "CAFile", c.CAPath)
	}

	c.Logger.Info("TLS configuration successful")
	return tlsConfig, nil
}
