package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/cache"
	"github.com/me/storecms/pkg/model"
)

const getCategoryOptionsQuery = `query GetProductCategories($parentId: Int!, $isAll: Boolean!) {
  getProductCategoriesChild(parent_id: $parentId, is_all: $isAll) { id name }
}`

const attributeOptionsPath = "/cms/v1/option/product-attributes"

// Cache keys of the option lists.
const (
	CategoryOptionsKey  = "options:product-categories"
	AttributeOptionsKey = "options:product-attributes"
)

// AttributeOption is a product attribute select option.
type AttributeOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Options serves the select options of the console forms. Category and
// attribute options are loaded once per cache lifetime; concurrent callers
// share the load.
type Options struct {
	api        API
	categories *cache.Cache[[]model.Option]
	attributes *cache.Cache[[]AttributeOption]
}

// NewOptions creates the option service over the given caches.
func NewOptions(d Deps, categories *cache.Cache[[]model.Option], attributes *cache.Cache[[]AttributeOption]) *Options {
	return &Options{api: d.API, categories: categories, attributes: attributes}
}

// ProductCategories returns every category as an option.
func (s *Options) ProductCategories(ctx context.Context) ([]model.Option, error) {
	return s.categories.GetOrFetch(ctx, CategoryOptionsKey, func(ctx context.Context) ([]model.Option, error) {
		type row struct {
			ID   model.ID `json:"id"`
			Name string   `json:"name"`
		}
		rows, err := query[[]row](ctx, s.api, "getProductCategoriesChild", getCategoryOptionsQuery,
			map[string]any{"parentId": 0, "isAll": true})
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(r row, _ int) model.Option {
			return model.Option{ID: r.ID.String(), Label: r.Name}
		}), nil
	})
}

// ProductAttributes returns the attribute options.
func (s *Options) ProductAttributes(ctx context.Context) ([]AttributeOption, error) {
	return s.attributes.GetOrFetch(ctx, AttributeOptionsKey, func(ctx context.Context) ([]AttributeOption, error) {
		var opts []AttributeOption
		if err := s.api.Get(ctx, attributeOptionsPath, nil, &opts); err != nil {
			return nil, err
		}
		return opts, nil
	})
}

// DiscountTypes returns the supported discount types.
func (s *Options) DiscountTypes() []model.Option {
	return []model.Option{
		{ID: model.DiscountPercentage, Label: "Percentage (%)"},
		{ID: model.DiscountAmount, Label: "Amount"},
	}
}

// Invalidate drops both cached option lists, e.g. after a category or
// attribute write.
func (s *Options) Invalidate() {
	s.categories.Invalidate(CategoryOptionsKey)
	s.attributes.Invalidate(AttributeOptionsKey)
}
