// internal/upstream/jwtverify/verifier.go

// Package jwtverify is the token-verification stage that runs ahead of the
// authentication filter. It checks the signature of inbound bearer tokens
// against the configured issuer and hands the verified claims to the filter
// as a base64-encoded JSON header.
package jwtverify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"authnfilter/internal/observability/logging"
	"authnfilter/internal/observability/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier verifies inbound bearer tokens and publishes their claims.
type Verifier struct {
	logger    *logging.Logger
	metrics   *metrics.Collector
	enabled   bool
	verifier  *oidc.IDTokenVerifier
	clientID  string
	location  string
	protected []string
	appCtx    context.Context
}

// Config holds token verifier configuration
type Config struct {
	// Enabled indicates whether token verification is enabled
	Enabled bool

	// Issuer is the token issuer URL
	Issuer string

	// ClientID is the client ID for token validation
	ClientID string

	// Location is the header the verified claims are written to
	Location string

	// Protected lists every configured claims header. They are stripped from
	// inbound requests even when verification is disabled, so a client can
	// never smuggle its own claims past the verifier.
	Protected []string
}

// audiences helps unmarshall the audience claim which can be either a string or an array
type audiences []string

func (a *audiences) UnmarshalJSON(data []byte) error {
	// Try as a single string
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = []string{single}
		return nil
	}

	// Try as an array of strings
	var multiple []string
	if err := json.Unmarshal(data, &multiple); err == nil {
		*a = multiple
		return nil
	}

	return fmt.Errorf("invalid audience claim format")
}

// New creates a new token verifier
func New(config Config, logger *logging.Logger, collector *metrics.Collector) (*Verifier, error) {
	logger = logger.WithModule("upstream.jwtverify")

	protected := config.Protected
	if config.Location != "" && !slices.Contains(protected, config.Location) {
		protected = append(protected, config.Location)
	}

	if !config.Enabled {
		return &Verifier{
			logger:    logger,
			metrics:   collector,
			enabled:   false,
			protected: protected,
		}, nil
	}

	if config.Issuer == "" {
		return nil, fmt.Errorf("token verification enabled but no issuer provided")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("token verification enabled but no client ID provided")
	}
	if config.Location == "" {
		return nil, fmt.Errorf("token verification enabled but no claims header location configured for issuer %s", config.Issuer)
	}

	// Create context for OIDC operations
	ctx := context.Background()

	logger.Debug("Initializing OIDC provider for token verification", "issuer", config.Issuer)
	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	oidcConfig := &oidc.Config{
		ClientID:          config.ClientID,
		SkipClientIDCheck: true, // We do our own checks for better error reporting
	}

	return &Verifier{
		logger:    logger,
		metrics:   collector,
		enabled:   true,
		verifier:  provider.Verifier(oidcConfig),
		clientID:  config.ClientID,
		location:  config.Location,
		protected: protected,
		appCtx:    ctx,
	}, nil
}

// Middleware returns an http.Handler middleware that verifies bearer tokens.
// Requests without a bearer token pass through untouched; requests with an
// invalid token are rejected. Verified claims are written to the configured
// header, replacing any value the client may have set.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The claims headers are trusted downstream, so they must never
		// survive from the client side, even when verification is disabled.
		for _, name := range v.protected {
			r.Header.Del(name)
		}

		if !v.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := logging.LoggerFromContext(ctx)
		if logger == nil {
			logger = v.logger
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Debug("No bearer token found, passing through")
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == "" {
			logger.Debug("Empty bearer token, passing through")
			next.ServeHTTP(w, r)
			return
		}

		// A presented token must verify; there is no fallback once the
		// client has chosen to send one.
		idToken, err := v.verifier.Verify(v.appCtx, tokenStr)
		if err != nil {
			logger.Error("Bearer token verification failed", logging.Err(err))
			v.metrics.RecordRejection("invalid_token")
			http.Error(w, "Invalid bearer token", http.StatusForbidden)
			return
		}

		var checks struct {
			Azp string    `json:"azp,omitempty"`
			Aud audiences `json:"aud,omitempty"`
		}
		if err := idToken.Claims(&checks); err != nil {
			logger.Error("Failed to parse claims from bearer token", logging.Err(err))
			v.metrics.RecordRejection("invalid_token")
			http.Error(w, "Failed to parse token claims", http.StatusForbidden)
			return
		}

		if checks.Azp != v.clientID && !slices.Contains(checks.Aud, v.clientID) {
			logger.Error("Bearer token audience mismatch",
				"expectedClientID", v.clientID,
				"aud", checks.Aud,
				"azp", checks.Azp,
			)
			v.metrics.RecordRejection("audience_mismatch")
			http.Error(w, "Invalid bearer token audience", http.StatusForbidden)
			return
		}

		encoded, err := encodeClaims(idToken)
		if err != nil {
			logger.Error("Failed to encode verified claims", logging.Err(err))
			v.metrics.RecordRejection("invalid_token")
			http.Error(w, "Failed to parse token claims", http.StatusForbidden)
			return
		}
		r.Header.Set(v.location, encoded)

		logger.Debug("Bearer token verified", "issuer", idToken.Issuer, "subject", idToken.Subject)

		next.ServeHTTP(w, r)
	})
}

// encodeClaims renders the token's full claim set as base64-encoded JSON, the
// wire format the authentication filter consumes.
func encodeClaims(idToken *oidc.IDToken) (string, error) {
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return "", err
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
