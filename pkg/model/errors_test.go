package model

import "testing"

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "route 'GET /x' not found"}
	want := "NOT_FOUND: route 'GET /x' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("product", "42")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "product '42' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "product '42' not found")
	}
}

func TestNewMethodNotAllowedError(t *testing.T) {
	err := NewMethodNotAllowedError("GET", "/api/gql")
	if err.Code != ErrMethodNotAllowed {
		t.Errorf("Code = %q, want %q", err.Code, ErrMethodNotAllowed)
	}
	if err.Message != "GET is not supported on /api/gql" {
		t.Errorf("Message = %q", err.Message)
	}
}
