package collection

import (
	"context"

	"github.com/samber/lo"

	"github.com/me/storecms/pkg/model"
)

// LocalPager loads a whole list, filters it and serves one page of it,
// reporting page metadata the way a paging backend would.
type LocalPager[T any] struct {
	// Load returns the complete list.
	Load func(ctx context.Context, req Request) ([]T, error)
	// Match keeps an item for req. A nil Match keeps everything.
	Match func(item T, req Request) bool
}

// Fetch implements Fetcher.
func (p LocalPager[T]) Fetch(ctx context.Context, req Request) (Result[[]T], error) {
	all, err := p.Load(ctx, req)
	if err != nil {
		return Result[[]T]{}, err
	}

	filtered := all
	if p.Match != nil {
		filtered = lo.Filter(all, func(item T, _ int) bool { return p.Match(item, req) })
	}
	items, info := Paginate(filtered, req.Page, req.Limit)
	return Result[[]T]{Data: items, Page: &info}, nil
}

// Paginate slices the zero-based page out of items.
func Paginate[T any](items []T, page, limit int) ([]T, model.PageInfo) {
	total := len(items)
	info := model.NewPageInfo(oneBased(page), limit, total)
	page = max(page, 0)
	if limit <= 0 || total == 0 || page > (total-1)/limit {
		return []T{}, info
	}
	start := page * limit
	end := start + min(limit, total-start)
	return append([]T{}, items[start:end]...), info
}
