package collection

import (
	"context"
	"net/url"

	"github.com/me/storecms/pkg/cmsapi"
	"github.com/me/storecms/pkg/model"
)

// Getter issues REST GETs and decodes the `data` member of the envelope.
// *cmsapi.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...cmsapi.CallOption) error
}

// RESTCollection fetches a REST collection endpoint answering with a
// Page<T> envelope.
type RESTCollection[T any] struct {
	Client Getter
	// Path may contain `{name}` placeholders filled from PathParams.
	Path       string
	PathParams map[string]string
	// Public calls are sent without the bearer token.
	Public bool
}

// Fetch sends the parameters plus one-based page and limit.
func (f *RESTCollection[T]) Fetch(ctx context.Context, req Request) (Result[[]T], error) {
	var page model.Page[T]
	if err := f.Client.Get(ctx, ExpandPath(f.Path, f.PathParams), req.Values(), &page, callOpts(f.Public)...); err != nil {
		return Result[[]T]{}, err
	}
	info := page.Info()
	items := page.Result
	if items == nil {
		items = []T{}
	}
	return Result[[]T]{Data: items, Page: &info}, nil
}

// RESTEntity fetches a single entity from a REST endpoint.
type RESTEntity[T any] struct {
	Client     Getter
	Path       string
	PathParams map[string]string
	Public     bool
}

// Fetch sends only the filter parameters; paging does not apply.
func (f *RESTEntity[T]) Fetch(ctx context.Context, req Request) (Result[T], error) {
	var query url.Values
	if len(req.Params) > 0 {
		query = url.Values{}
		for k, v := range req.Params {
			query.Set(k, formatValue(v))
		}
	}
	var out T
	if err := f.Client.Get(ctx, ExpandPath(f.Path, f.PathParams), query, &out, callOpts(f.Public)...); err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Data: out}, nil
}

func callOpts(public bool) []cmsapi.CallOption {
	if public {
		return []cmsapi.CallOption{cmsapi.Public()}
	}
	return nil
}
