// internal/contextutil/context.go
package contextutil

import (
	"context"

	"authnfilter/internal/authn"
)

// Key is a type-safe key for context values
type Key string

const (
	// ResultKey is the key for the authentication result
	ResultKey Key = "context:authn_result"

	// RequestIDKey is the key for the request ID
	RequestIDKey Key = "context:request_id"
)

// WithResult adds an authentication result to a context
func WithResult(ctx context.Context, result *authn.Result) context.Context {
	return context.WithValue(ctx, ResultKey, result)
}

// GetResult retrieves an authentication result from a context
func GetResult(ctx context.Context) *authn.Result {
	if result, ok := ctx.Value(ResultKey).(*authn.Result); ok {
		return result
	}
	return nil
}

// WithRequestID adds a request ID to a context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves a request ID from a context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
