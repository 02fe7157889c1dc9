package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrCSRFMismatch is returned when the callback state does not match the
	// state of the pending flow. The flow is destroyed.
	ErrCSRFMismatch = errors.New("state mismatch: possible CSRF attack")

	// ErrNoPendingFlow is returned when a code is exchanged without a live
	// flow: nil, already used, or superseded by a newer StartAuthFlow.
	ErrNoPendingFlow = errors.New("no pending authorization flow")

	// ErrExchangeFailed wraps any failure talking to the token endpoint.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrMissingCallbackParams is delivered when the callback carries neither
	// an error nor both code and state.
	ErrMissingCallbackParams = errors.New("callback is missing code or state")

	// ErrTokenNotFound is returned by TokenStore.Load when no token was persisted.
	ErrTokenNotFound = errors.New("no stored token")

	// ErrTokenCorrupt is returned by TokenStore.Load when the file cannot be used.
	ErrTokenCorrupt = errors.New("stored token is corrupt")
)

// AuthorizationError is delivered when the authorization server redirects
// back with an error parameter, e.g. the user pressed "Cancel".
type AuthorizationError struct {
	Code        string
	Description string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
}
