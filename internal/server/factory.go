// internal/server/factory.go
package server

import (
	"crypto/tls"
	"fmt"

	"authnfilter/internal/authn"
	"authnfilter/internal/config"
	"authnfilter/internal/filter"
	"authnfilter/internal/observability"
	"authnfilter/internal/proxy/router"
	tlsconfig "authnfilter/internal/tls"
	"authnfilter/internal/upstream/jwtverify"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize TLS configuration
	var tlsCfg *tls.Config
	if cfg.TLS.Enabled {
		tlsSetup := &tlsconfig.Config{
			Logger:   logger,
			CAPath:   cfg.TLS.CAPath,
			CertPath: cfg.TLS.CertPath,
			KeyPath:  cfg.TLS.KeyPath,
		}
		tlsCfg, err = tlsSetup.GetTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Initialize the token verification stage
	verifier, err := jwtverify.New(jwtverify.Config{
		Enabled:   cfg.Verify.Enabled,
		Issuer:    cfg.Verify.Issuer,
		ClientID:  cfg.Verify.ClientID,
		Location:  cfg.Authn.JwtPayloadLocations[cfg.Verify.Issuer],
		Protected: claimsHeaders(cfg.Authn.JwtPayloadLocations),
	}, logger, obs.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Initialize the authentication filter
	policy, err := buildPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build authentication policy: %w", err)
	}
	authnFilter := filter.New(filter.Config{
		Enabled:             cfg.Authn.Enabled,
		JwtPayloadLocations: cfg.Authn.JwtPayloadLocations,
		Policy:              policy,
	}, logger, obs.Metrics)
	if cfg.Authn.Enabled {
		logger.Info("Authentication filter enabled",
			"peer_methods", len(policy.Peers),
			"origin_methods", len(policy.Origins),
			"binding", string(policy.Binding),
		)
	}

	// Initialize router
	proxyRouter := router.New(router.Config{
		UpstreamURL:     cfg.Upstream.URL,
		UpstreamTimeout: cfg.Upstream.Timeout,
	}, logger, obs.Metrics)

	// Create server configuration
	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	// Create complete middleware chain: observability -> verification -> filter -> router
	handler := obs.Middleware(verifier.Middleware(authnFilter.Middleware(proxyRouter)))

	// Create and return the server
	srv := New(serverConfig, handler, obs.MetricsHandler(), logger)
	return srv, nil
}

// claimsHeaders lists every configured claims header location
func claimsHeaders(locations map[string]string) []string {
	headers := make([]string, 0, len(locations))
	for _, name := range locations {
		headers = append(headers, name)
	}
	return headers
}

// buildPolicy converts the configured method specs into an authentication policy
func buildPolicy(cfg *config.Config) (authn.Policy, error) {
	policy := authn.Policy{
		Binding: authn.PrincipalBinding(cfg.Authn.PrincipalBinding),
	}

	for _, spec := range cfg.Authn.Peers {
		method, err := parseMethod(spec)
		if err != nil {
			return authn.Policy{}, err
		}
		policy.Peers = append(policy.Peers, method)
	}

	for _, spec := range cfg.Authn.Origins {
		method, err := parseMethod(spec)
		if err != nil {
			return authn.Policy{}, err
		}
		policy.Origins = append(policy.Origins, method)
	}

	return policy, nil
}

// parseMethod converts one method spec string into an authentication method
func parseMethod(spec string) (authn.Method, error) {
	kind, issuer, err := config.ParseMethodSpec(spec)
	if err != nil {
		return authn.Method{}, err
	}

	switch kind {
	case config.MethodMTLS:
		return authn.Method{MTLS: &authn.MutualTLSRequirement{}}, nil
	case config.MethodTLS:
		return authn.Method{MTLS: &authn.MutualTLSRequirement{AllowTLS: true}}, nil
	case config.MethodJWT:
		return authn.Method{JWT: &authn.JwtRequirement{Issuer: issuer}}, nil
	default:
		return authn.Method{}, fmt.Errorf("unknown method kind %q", kind)
	}
}
