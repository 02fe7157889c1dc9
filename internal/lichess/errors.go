package lichess

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means the token was rejected or the account is not readable.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRejected means the server refused a board action such as an illegal move.
	ErrRejected = errors.New("request rejected")
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// APIError is a non-2xx response from the Lichess API.
type APIError struct {
	Op         string // e.g. "move", "account"
	StatusCode int
	Message    string // server supplied reason, if any

	kind error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("lichess %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches the error class of the call, and ErrUnauthorized for any 401.
func (e *APIError) Is(target error) bool {
	if target == e.kind {
		return true
	}
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// newAPIError reads the body of a failed response. Lichess usually answers
// with {"error": "..."}; anything else is kept as trimmed text.
func newAPIError(op string, kind error, resp *http.Response) *APIError {
	e := &APIError{Op: op, StatusCode: resp.StatusCode, kind: kind}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		e.Message = payload.Error
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
