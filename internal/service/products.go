package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const productFields = `id name slug description image
    category { id name }
    is_highlight is_recommended is_upsell
    galleries { id image orders }
    additionals { id name price moq stock discount discount_type attributes }
    created_at updated_at`

const (
	getProductsQuery = `query getProducts {
  getProducts { ` + productFields + ` }
}`
	getProductDetailQuery = `query getProductDetail($id: Int!) {
  getProductDetail(id: $id) { ` + productFields + ` }
}`
	createProductMutation = `mutation CreateProduct($name: String!, $description: String!, $image: String, $product_category_id: Int!, $is_highlight: Boolean!, $is_recommended: Boolean!, $is_upsell: Boolean!, $is_active: Boolean) {
  createProduct(name: $name, description: $description, image: $image, product_category_id: $product_category_id, is_highlight: $is_highlight, is_recommended: $is_recommended, is_upsell: $is_upsell, is_active: $is_active) { id name }
}`
	updateProductMutation = `mutation UpdateProduct($id: Int!, $name: String!, $description: String, $image: String, $product_category_id: Int!, $is_highlight: Boolean!, $is_recommended: Boolean!, $is_upsell: Boolean!, $is_active: Boolean) {
  updateProduct(id: $id, name: $name, description: $description, image: $image, product_category_id: $product_category_id, is_highlight: $is_highlight, is_recommended: $is_recommended, is_upsell: $is_upsell, is_active: $is_active) { id name }
}`
)

const productPath = "/cms/v1/product"

// Products manages the product catalogue.
type Products struct {
	deps        Deps
	additionals *Additionals
	galleries   *Galleries
}

// NewProducts creates the product service.
func NewProducts(d Deps) *Products {
	return &Products{
		deps:        d,
		additionals: NewAdditionals(d),
		galleries:   NewGalleries(d),
	}
}

// All returns every product.
func (s *Products) All(ctx context.Context) ([]model.Product, error) {
	return query[[]model.Product](ctx, s.deps.API, "getProducts", getProductsQuery, nil)
}

// List returns a controller over all products, filtered by the `keyword`
// parameter against name and slug and paginated locally.
func (s *Products) List(o ListOptions) *collection.Controller[[]model.Product] {
	pager := collection.LocalPager[model.Product]{
		Load: func(ctx context.Context, _ collection.Request) ([]model.Product, error) {
			return s.All(ctx)
		},
		Match: func(p model.Product, req collection.Request) bool {
			return matchesKeyword(req.Keyword(), p.Name, p.Slug)
		},
	}
	return collection.New[[]model.Product](pager, s.deps.controllerOptions(o))
}

// Detail returns one product.
func (s *Products) Detail(ctx context.Context, id int) (model.Product, error) {
	return queryOne[model.Product](ctx, s.deps.API, "getProductDetail", getProductDetailQuery, map[string]any{"id": id})
}

// Create creates a product, then each of its additionals and galleries.
func (s *Products) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	vars := productVars(in)
	created, err := queryOne[model.Product](ctx, s.deps.API, "createProduct", createProductMutation, vars)
	if err != nil {
		return model.Product{}, err
	}
	productID, err := created.ID.Int()
	if err != nil || productID == 0 {
		return created, errors.New("failed to create product")
	}

	for _, a := range in.Additionals {
		if _, err := s.additionals.Create(ctx, productID, a); err != nil {
			return created, fmt.Errorf("create additional %q: %w", a.Name, err)
		}
	}
	for _, g := range in.Galleries {
		if _, err := s.galleries.Create(ctx, productID, g.Image, g.Orders); err != nil {
			return created, fmt.Errorf("create gallery image: %w", err)
		}
	}
	return created, nil
}

// Update updates a product and syncs its galleries and additionals.
// Galleries with database ids are updated, the rest created. Additionals
// with ids are updated, new ones created and those missing from in deleted.
// Sync failures do not stop the remaining steps; they are joined into the
// returned error.
func (s *Products) Update(ctx context.Context, id int, in model.ProductInput) (model.Product, error) {
	vars := productVars(in)
	vars["id"] = id
	updated, err := queryOne[model.Product](ctx, s.deps.API, "updateProduct", updateProductMutation, vars)
	if err != nil {
		return model.Product{}, err
	}

	var errs []error
	for _, g := range in.Galleries {
		if g.ID.IsNumeric() {
			var gid int
			if gid, err = g.ID.Int(); err == nil {
				_, err = s.galleries.Update(ctx, gid, g.Image, g.Orders)
			}
		} else {
			_, err = s.galleries.Create(ctx, id, g.Image, g.Orders)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("sync gallery %s: %w", g.ID, err))
		}
	}

	if in.Additionals != nil {
		if err := s.syncAdditionals(ctx, id, in.Additionals); err != nil {
			errs = append(errs, err)
		}
	}
	return updated, errors.Join(errs...)
}

func (s *Products) syncAdditionals(ctx context.Context, productID int, incoming []model.ProductAdditional) error {
	existing, err := s.additionals.List(ctx, productID)
	if err != nil {
		return fmt.Errorf("list additionals: %w", err)
	}
	keep := lo.SliceToMap(
		lo.Filter(incoming, func(a model.ProductAdditional, _ int) bool { return a.ID != "" }),
		func(a model.ProductAdditional) (model.ID, struct{}) { return a.ID, struct{}{} },
	)

	var errs []error
	for _, a := range incoming {
		if a.ID != "" {
			aid, err := a.ID.Int()
			if err == nil {
				_, err = s.additionals.Update(ctx, aid, a)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("update additional %s: %w", a.ID, err))
			}
			continue
		}
		if _, err := s.additionals.Create(ctx, productID, a); err != nil {
			errs = append(errs, fmt.Errorf("create additional %q: %w", a.Name, err))
		}
	}
	for _, ex := range existing {
		if _, ok := keep[ex.ID]; ok {
			continue
		}
		exID, err := ex.ID.Int()
		if err == nil {
			_, err = s.additionals.Delete(ctx, exID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("delete additional %s: %w", ex.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Delete removes a product.
func (s *Products) Delete(ctx context.Context, id string) error {
	return s.deps.API.Do(ctx, http.MethodDelete, productPath+"/"+url.PathEscape(id), nil, nil, nil)
}

// UpdateGalleries adds uploaded image URLs to a product gallery and removes
// gallery entries by id in one call.
func (s *Products) UpdateGalleries(ctx context.Context, id string, newFiles, removeIDs []string) error {
	q := url.Values{}
	q.Set("newFile", strings.Join(newFiles, ","))
	q.Set("removeId", strings.Join(removeIDs, ","))
	return s.deps.API.Do(ctx, http.MethodPut, productPath+"/"+url.PathEscape(id)+"/gallery", q, nil, nil)
}

func productVars(in model.ProductInput) map[string]any {
	return map[string]any{
		"name":                in.Name,
		"description":         in.Description,
		"image":               nullable(in.Image),
		"product_category_id": in.ProductCategoryID,
		"is_highlight":        in.IsHighlight,
		"is_recommended":      in.IsRecommended,
		"is_upsell":           in.IsUpsell,
		"is_active":           nullableBool(in.IsActive),
	}
}

// matchesKeyword reports whether any field contains kw, ignoring case. An
// empty keyword matches everything.
func matchesKeyword(kw string, fields ...string) bool {
	if kw == "" {
		return true
	}
	return lo.SomeBy(fields, func(f string) bool {
		return strings.Contains(strings.ToLower(f), kw)
	})
}
