package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers bad credentials and every token failure.
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("service unavailable")
)

// TokenCause classifies why a session token was rejected.
type TokenCause string

const (
	CauseEmpty        TokenCause = "empty"
	CauseMalformed    TokenCause = "malformed"
	CauseBadSignature TokenCause = "bad_signature"
	CauseExpired      TokenCause = "expired"
	CauseUnsupported  TokenCause = "unsupported"
)

// TokenError is returned by token verification. It matches ErrAuthentication
// with errors.Is so callers that do not care about the cause can ignore it.
type TokenError struct {
	Cause TokenCause
	Err   error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid token (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("invalid token (%s)", e.Cause)
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool { return target == ErrAuthentication }

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ConflictError is returned when a unique field is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case "username":
		return "Username is already taken"
	case "email":
		return "Email is already in use"
	default:
		return e.Field + " already exists"
	}
}

// ConfigurationError marks a deployment fault: missing seed data, empty secrets.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// RenderError wraps a failure of the diagram renderer or its input checks.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *RenderError) Unwrap() error { return e.Err }

// NewValidation is a shortcut for &ValidationError{}.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
