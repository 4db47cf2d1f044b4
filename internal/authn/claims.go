// internal/authn/claims.go
package authn

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DecodeClaims decodes a base64-encoded JSON object of token claims into a
// name-to-value mapping. Only string-valued claims are kept; numbers,
// booleans, arrays, nested objects and nulls are dropped without error.
func DecodeClaims(encoded string) (map[string]string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("claims payload is not valid base64: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("claims payload is not a JSON object: %w", err)
	}

	claims := make(map[string]string, len(fields))
	for name, value := range fields {
		if s, ok := value.(string); ok {
			claims[name] = s
		}
	}

	return claims, nil
}
