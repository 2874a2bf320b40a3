// Package collection implements the remote collection controller: a state
// container that fetches one logical endpoint (a page of entities or a single
// entity), re-fetches whenever its parameters or pagination change and
// guarantees that only the most recently issued fetch can update its state.
package collection

import (
	"context"

	"github.com/me/storecms/pkg/model"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// LoginPath is where a controller navigates after the backend rejects the
// session.
const LoginPath = "/login"

// Pagination is the local paging state. Page is zero-based.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// State is a snapshot of a controller.
type State[T any] struct {
	Data       T
	HasData    bool
	Loading    bool
	Err        error
	Pagination Pagination
}

// Result is what a Fetcher returns. Page is nil for single-entity fetches;
// collection fetches report one-based page metadata.
type Result[T any] struct {
	Data T
	Page *model.PageInfo
}

// Fetcher performs one fetch for a built request.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req Request) (Result[T], error)
}

// FuncFetcher adapts a plain function to Fetcher.
type FuncFetcher[T any] func(ctx context.Context, req Request) (Result[T], error)

// Fetch calls f.
func (f FuncFetcher[T]) Fetch(ctx context.Context, req Request) (Result[T], error) {
	return f(ctx, req)
}

// Session is the token holder cleared when the backend answers 403.
type Session interface {
	Clear()
}

// Navigator moves the caller to another context, e.g. the login screen.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(path string) { f(path) }
