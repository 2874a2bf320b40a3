package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// APIError is a structured error returned by the proxy's JSON endpoints.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// NewMethodNotAllowedError creates a METHOD_NOT_ALLOWED APIError.
func NewMethodNotAllowedError(method, path string) *APIError {
	return &APIError{
		Code:    ErrMethodNotAllowed,
		Message: fmt.Sprintf("%s is not supported on %s", method, path),
	}
}
