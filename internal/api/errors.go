package api

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the client. Callers match them with errors.Is.
var (
	// ErrAuthentication covers bad credentials and invalid or expired tokens.
	ErrAuthentication = errors.New("authentication failed")

	// ErrValidation covers malformed payloads and server-side field rejection.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("network error")

	// ErrNotFound covers operations against nonexistent resources.
	ErrNotFound = errors.New("not found")
)

// Error is a failed API call. It wraps one of the sentinel categories above
// so both errors.Is(err, api.ErrValidation) and errors.As(err, *api.Error)
// work at call sites.
type Error struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// errorBody is the error payload shape the server emits.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// statusError maps an HTTP status code and server message to a typed error.
func statusError(status int, message string) *Error {
	kind := ErrNetwork
	switch {
	case status == 401 || status == 403:
		kind = ErrAuthentication
	case status == 404:
		kind = ErrNotFound
	case status == 400 || status == 409 || status == 422:
		kind = ErrValidation
	}
	return &Error{Kind: kind, StatusCode: status, Message: message}
}
