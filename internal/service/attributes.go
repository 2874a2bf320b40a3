package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const attributePath = "/cms/v1/product-attribute"

// Attributes manages product attribute definitions over REST.
type Attributes struct {
	deps Deps
}

// NewAttributes creates the attribute service.
func NewAttributes(d Deps) *Attributes {
	return &Attributes{deps: d}
}

// List returns a controller over the paged attribute endpoint. Parameters
// such as `category` are passed through as query terms.
func (s *Attributes) List(o ListOptions) *collection.Controller[[]model.ProductAttribute] {
	fetcher := &collection.RESTCollection[model.ProductAttribute]{
		Client: s.deps.API,
		Path:   attributePath,
	}
	return collection.New[[]model.ProductAttribute](fetcher, s.deps.controllerOptions(o))
}

// Watch returns a controller over a single attribute.
func (s *Attributes) Watch(id string) *collection.Controller[model.ProductAttribute] {
	fetcher := &collection.RESTEntity[model.ProductAttribute]{
		Client:     s.deps.API,
		Path:       attributePath + "/{id}",
		PathParams: map[string]string{"id": id},
	}
	return collection.New[model.ProductAttribute](fetcher, s.deps.controllerOptions(ListOptions{}))
}

// Create creates an attribute.
func (s *Attributes) Create(ctx context.Context, in model.ProductAttributeInput) error {
	return s.deps.API.Do(ctx, http.MethodPost, attributePath, nil, in, nil)
}

// Update replaces an attribute.
func (s *Attributes) Update(ctx context.Context, id string, in model.ProductAttributeInput) error {
	return s.deps.API.Do(ctx, http.MethodPut, attributePath+"/"+url.PathEscape(id), nil, in, nil)
}

// Delete removes an attribute.
func (s *Attributes) Delete(ctx context.Context, id string) error {
	return s.deps.API.Do(ctx, http.MethodDelete, attributePath+"/"+url.PathEscape(id), nil, nil, nil)
}

// FilterByCategory keeps the attributes of one category.
func FilterByCategory(attrs []model.ProductAttribute, categoryID string) []model.ProductAttribute {
	return lo.Filter(attrs, func(a model.ProductAttribute, _ int) bool {
		return a.CategoryID.String() == categoryID
	})
}
