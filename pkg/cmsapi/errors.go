package cmsapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMalformedResponse indicates the backend answered with a payload that
	// does not match the expected envelope.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoBaseURL indicates the client has no API URL configured.
	ErrNoBaseURL = errors.New("api url is not configured")
)

// HTTPError represents an HTTP-level error (non-2xx response), or an
// in-band status reported inside an envelope.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRetryable returns true if the HTTP error is retryable.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// APIError is an application-level failure (`success: false`).
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// GraphQLError carries the messages of a GraphQL `errors` array.
type GraphQLError struct {
	Messages []string
}

// Error joins all messages the way the console displays them.
func (e *GraphQLError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Error wraps a client failure with the operation that produced it.
type Error struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation context.
func WrapError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// IsForbidden returns true for authorization failures that must end the
// session: HTTP 403 or an envelope reporting status 403.
func IsForbidden(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusForbidden
}

// IsRetryable returns true if the error is likely transient.
func IsRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	return false
}

// Message returns the message worth showing to an operator: the server's
// own text for application errors, the full chain otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr.Error()
	}
	return err.Error()
}
