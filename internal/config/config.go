// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Method spec kinds accepted in peer and origin lists
const (
	MethodMTLS = "mtls"
	MethodTLS  = "tls"
	MethodJWT  = "jwt"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("AUTHN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// It's okay if the config file doesn't exist, but other errors should be reported
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Create the config object
	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate TLS configuration
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")
	config.TLS.CAPath = v.GetString("TLS_CA_PATH")

	// Populate upstream configuration
	upstreamURL, err := url.Parse(v.GetString("UPSTREAM_URL"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}
	config.Upstream.URL = upstreamURL

	upstreamTimeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}
	config.Upstream.Timeout = upstreamTimeout

	// Populate authentication filter configuration
	config.Authn.Enabled = v.GetBool("FILTER_ENABLED")
	config.Authn.JwtPayloadLocations = v.GetStringMapString("JWT_PAYLOAD_LOCATIONS")
	config.Authn.Peers = v.GetStringSlice("PEER_METHODS")
	config.Authn.Origins = v.GetStringSlice("ORIGIN_METHODS")
	config.Authn.PrincipalBinding = v.GetString("PRINCIPAL_BINDING")

	// Populate token verification configuration
	config.Verify.Enabled = v.GetBool("VERIFY_ENABLED")
	config.Verify.Issuer = v.GetString("VERIFY_ISSUER")
	config.Verify.ClientID = v.GetString("VERIFY_CLIENT_ID")

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseMethodSpec splits a method spec string into its kind and argument.
// "mtls" and "tls" take no argument; "jwt:<issuer>" carries the issuer.
func ParseMethodSpec(spec string) (kind, arg string, err error) {
	switch {
	case spec == MethodMTLS, spec == MethodTLS:
		return spec, "", nil
	case strings.HasPrefix(spec, MethodJWT+":"):
		issuer := strings.TrimPrefix(spec, MethodJWT+":")
		if issuer == "" {
			return "", "", fmt.Errorf("method spec %q has an empty issuer", spec)
		}
		return MethodJWT, issuer, nil
	default:
		return "", "", fmt.Errorf("unknown method spec %q", spec)
	}
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	// Validate required fields
	if cfg.Upstream.URL == nil || cfg.Upstream.URL.String() == "" {
		return fmt.Errorf("upstream URL is required")
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		// Check if certificate and key files exist
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	// Validate authentication filter configuration
	if err := validateAuthnConfig(cfg); err != nil {
		return err
	}

	// Validate token verification configuration
	if cfg.Verify.Enabled {
		if cfg.Verify.Issuer == "" {
			return fmt.Errorf("verification issuer is required when token verification is enabled")
		}
		if cfg.Verify.ClientID == "" {
			return fmt.Errorf("verification client ID is required when token verification is enabled")
		}
		if _, ok := cfg.Authn.JwtPayloadLocations[cfg.Verify.Issuer]; !ok {
			return fmt.Errorf("no claims header location configured for verification issuer %s", cfg.Verify.Issuer)
		}
	}

	return nil
}

// validateAuthnConfig validates authentication filter configuration
func validateAuthnConfig(cfg *Config) error {
	if !cfg.Authn.Enabled {
		return nil
	}

	switch cfg.Authn.PrincipalBinding {
	case "peer", "origin":
	default:
		return fmt.Errorf("invalid principal binding: %q", cfg.Authn.PrincipalBinding)
	}

	for _, spec := range cfg.Authn.Peers {
		kind, issuer, err := ParseMethodSpec(spec)
		if err != nil {
			return fmt.Errorf("invalid peer method: %w", err)
		}
		if kind == MethodJWT {
			if _, ok := cfg.Authn.JwtPayloadLocations[issuer]; !ok {
				return fmt.Errorf("peer method %q references issuer with no configured claims header", spec)
			}
		}
	}

	for _, spec := range cfg.Authn.Origins {
		kind, issuer, err := ParseMethodSpec(spec)
		if err != nil {
			return fmt.Errorf("invalid origin method: %w", err)
		}
		if kind != MethodJWT {
			return fmt.Errorf("origin method %q must be a jwt method", spec)
		}
		if _, ok := cfg.Authn.JwtPayloadLocations[issuer]; !ok {
			return fmt.Errorf("origin method %q references issuer with no configured claims header", spec)
		}
	}

	return nil
}
