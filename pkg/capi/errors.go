package capi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common static errors that can be wrapped with context.
var (
	// ErrUnauthorized classifies a 401 response. It is recoverable: the
	// client re-authenticates and replays the call once before surfacing it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthFailed is matched by every AuthError.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrParse is matched by every ParseError.
	ErrParse = errors.New("unexpected response schema")

	ErrConfigRequired        = errors.New("config is required")
	ErrAPIEndpointRequired   = errors.New("API endpoint is required")
	ErrSkipTLSOnlyInDev      = errors.New("skipTLS is only allowed in development environments")
	ErrMissingAccessToken    = errors.New("response did not contain an access_token")
	ErrNoCredentials         = errors.New("no credentials in vault")
	ErrIncompleteCredentials = errors.New("vaulted credentials are incomplete")
	ErrStateNotFound         = errors.New("state key not found")
)

// APIError is a non-success HTTP status surfaced to the caller.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Body       string `json:"body"        yaml:"body"`
	// Err carries the cause when the status was produced by a failed
	// recovery (an AuthError for a final 401).
	Err error `json:"-" yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes the recovery cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TransportError is a network or connection failure: no status was received.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError reports a failed login exchange.
type AuthError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed with status %d: %v", e.StatusCode, e.Err)
	}

	return fmt.Sprintf("authentication failed: %v", e.Err)
}

// Unwrap returns the cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches ErrAuthFailed.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthFailed
}

// ParseError reports a 2xx body that does not match the endpoint schema.
type ParseError struct {
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Resource, e.Err)
}

// Unwrap returns the decode or validation error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from an HTTP response.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsUnauthorized checks if the error is a 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound checks if the error is a 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTransport checks if the error is a network failure.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}
