package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ConnectionErrorType categorizes why Lichess could not be reached.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates the host refused or could not be routed to.
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError wraps a transport failure talking to the Lichess API.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

// Error returns a message with a hint matching the failure type.
func (e *ConnectionError) Error() string {
	var hint string
	switch e.Type {
	case ConnectionErrorTLS:
		hint = "TLS certificate verification failed. Check the system clock and any intercepting proxy."
	case ConnectionErrorDNS:
		hint = "Could not resolve the host. Check the network connection and api.baseURL."
	case ConnectionErrorTimeout:
		hint = "The request timed out. The network may be slow or Lichess may be unavailable."
	case ConnectionErrorNetwork:
		hint = "Connection failed. Check that the device is online."
	default:
		hint = "Could not reach the server."
	}
	return fmt.Sprintf("%s: %s (%v)", e.Endpoint, hint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError returns a ConnectionError if err looks like a
// transport failure, or nil otherwise. API errors are not connection errors.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	typ := ConnectionErrorUnknown
	var dnsErr *net.DNSError
	var urlErr *url.Error
	var opErr *net.OpError
	switch {
	case isTLSError(err):
		typ = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		typ = ConnectionErrorDNS
	case isTimeoutError(err):
		typ = ConnectionErrorTimeout
	case errors.As(err, &opErr):
		typ = ConnectionErrorNetwork
	case errors.As(err, &urlErr):
		typ = ConnectionErrorUnknown
	default:
		return nil
	}
	return &ConnectionError{Endpoint: endpoint, Type: typ, Reason: err}
}

func isTLSError(err error) bool {
	var certErr x509.CertificateInvalidError
	var hostErr x509.HostnameError
	var unknownAuthErr x509.UnknownAuthorityError
	var systemRootsErr x509.SystemRootsError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "x509:") || strings.Contains(msg, "tls:")
}

func isTimeoutError(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// AuthRequiredError means a command needs a stored token and there is none.
type AuthRequiredError struct {
	// TokenFile is where the token was looked for.
	TokenFile string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Not logged in to Lichess (no token at %s)

To authenticate, run:
  kindlechess auth login`, e.TokenFile)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthFailedError means the interactive OAuth flow did not produce a token:
// the state did not match, the code exchange failed or the user denied access.
type AuthFailedError struct {
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Lichess authentication failed: %v

To retry authentication, run:
  kindlechess auth login`, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}
