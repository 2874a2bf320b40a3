// Package service wraps the CMS backend per entity. List views are
// collection controllers; mutations call the backend directly and leave
// resynchronisation to the caller's Refetch.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/internal/logging"
	"github.com/me/storecms/pkg/cmsapi"
)

// ErrNotFound is returned when the backend has no entity for an id or slug.
var ErrNotFound = errors.New("not found")

// API is the backend surface used by the services. *cmsapi.Client
// satisfies it.
type API interface {
	GraphQL(ctx context.Context, query string, variables map[string]any, out any, opts ...cmsapi.CallOption) error
	Get(ctx context.Context, path string, query url.Values, out any, opts ...cmsapi.CallOption) error
	Do(ctx context.Context, method, path string, query url.Values, body any, out any, opts ...cmsapi.CallOption) error
}

// Deps are shared by every service.
type Deps struct {
	API API
	// Session and Navigator are handed to the list controllers.
	Session   collection.Session
	Navigator collection.Navigator
	Logger    *slog.Logger
}

func (d Deps) logger(component string) *slog.Logger {
	return logging.Component(d.Logger, component)
}

// ListOptions seeds a list controller.
type ListOptions struct {
	Page   int
	Limit  int
	Params map[string]any
}

func (d Deps) controllerOptions(o ListOptions) collection.Options {
	return collection.Options{
		Page:      o.Page,
		Limit:     o.Limit,
		Params:    o.Params,
		Session:   d.Session,
		Navigator: d.Navigator,
		Logger:    d.Logger,
	}
}

// query runs a GraphQL document and decodes data[field] into a T. A missing
// field is a malformed response; a null field decodes to the zero value.
func query[T any](ctx context.Context, api API, field, doc string, vars map[string]any) (T, error) {
	var out T
	var data map[string]json.RawMessage
	if err := api.GraphQL(ctx, doc, vars, &data); err != nil {
		return out, err
	}
	raw, ok := data[field]
	if !ok {
		return out, fmt.Errorf("%w: response has no %q", cmsapi.ErrMalformedResponse, field)
	}
	if string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s: %v", cmsapi.ErrMalformedResponse, field, err)
	}
	return out, nil
}

// queryOne is query for a single object; null means ErrNotFound.
func queryOne[T any](ctx context.Context, api API, field, doc string, vars map[string]any) (T, error) {
	p, err := query[*T](ctx, api, field, doc, vars)
	if err != nil {
		var zero T
		return zero, err
	}
	if p == nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", field, ErrNotFound)
	}
	return *p, nil
}

// nullable turns "" into a JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
