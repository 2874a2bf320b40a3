package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

// pageInfoFields selects the GraphQL page_info block.
const pageInfoFields = `page_info { current_page per_page total_items total_pages has_next_page has_previous_page start_item end_item }`

// serverPaged fetches a GraphQL list that pages on the server through
// `pagination: {page, limit}` and an optional `is_active` filter.
type serverPaged[T any] struct {
	api   API
	field string
	doc   string
	// finish fills fields the list query does not return.
	finish func(item *T, active bool)
	name   func(item T) string
}

func (f serverPaged[T]) Fetch(ctx context.Context, req collection.Request) (collection.Result[[]T], error) {
	vars := map[string]any{
		"page":  req.ServerPage(),
		"limit": req.Limit,
	}
	active, hasActive := req.Bool("is_active")
	if hasActive {
		vars["is_active"] = active
	}

	res, err := query[model.PagedItems[T]](ctx, f.api, f.field, f.doc, vars)
	if err != nil {
		return collection.Result[[]T]{}, err
	}

	items := res.Items
	for i := range items {
		f.finish(&items[i], !hasActive || active)
	}
	if kw := req.Keyword(); kw != "" {
		items = lo.Filter(items, func(it T, _ int) bool { return matchesKeyword(kw, f.name(it)) })
	}
	if items == nil {
		items = []T{}
	}

	var info model.PageInfo
	if res.PageInfo != nil {
		info = *res.PageInfo
		if info.CurrentPage <= 0 {
			info.CurrentPage = req.ServerPage()
		}
		if info.TotalItems == 0 {
			info.TotalItems = len(items)
		}
	} else {
		info = model.NewPageInfo(req.ServerPage(), 0, len(items))
	}
	return collection.Result[[]T]{Data: items, Page: &info}, nil
}
