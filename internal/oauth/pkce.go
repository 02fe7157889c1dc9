package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// stateBytes is the amount of entropy in the CSRF state token.
const stateBytes = 32

// GenerateVerifier returns a fresh PKCE code verifier (43 chars, base64url).
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// GenerateState generates a random state parameter for OAuth.
// The state links the callback back to the flow that started it.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
