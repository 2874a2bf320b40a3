package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const (
	getProductsFeaturedQuery = `query GetProductsFeatured($page: Int!, $limit: Int!) {
  getProducts(pagination: { page: $page, limit: $limit }) {
    items { ` + productFields + ` }
    ` + pageInfoFields + `
  }
}`
	getLandingCategoriesQuery = `query GetProductCategories {
  getProductCategories(is_landing_page: true) { id name image slug }
}`
)

// FeaturedLimit is the number of products shown as featured.
const FeaturedLimit = 20

// ErrInvalidSlug is reported for an empty product slug.
var ErrInvalidSlug = errors.New("invalid product slug")

// ProductDetail is the storefront view of one product.
type ProductDetail struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Category string   `json:"category,omitempty"`
	Images   []string `json:"images"`
	Pricing
	Colors  []string              `json:"colors"`
	Sizes   []string              `json:"sizes"`
	Details []model.AttributePair `json:"details"`
	InStock bool                  `json:"in_stock"`
}

// FeaturedProduct is a product card of the featured list.
type FeaturedProduct struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Category      string `json:"category,omitempty"`
	Image         string `json:"image,omitempty"`
	IsHighlight   bool   `json:"is_highlight"`
	IsRecommended bool   `json:"is_recommended"`
	IsUpsell      bool   `json:"is_upsell"`
	Pricing
}

// Storefront builds the public read models.
type Storefront struct {
	deps     Deps
	products *Products
}

// NewStorefront creates the storefront service.
func NewStorefront(d Deps) *Storefront {
	return &Storefront{deps: d, products: NewProducts(d)}
}

// ProductDetail looks a product up by slug.
func (s *Storefront) ProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	if slug == "" {
		return ProductDetail{}, ErrInvalidSlug
	}
	all, err := s.products.All(ctx)
	if err != nil {
		return ProductDetail{}, err
	}
	p, ok := lo.Find(all, func(p model.Product) bool { return p.Slug == slug })
	if !ok {
		return ProductDetail{}, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	return BuildProductDetail(p), nil
}

// WatchProduct returns a controller over the detail of the product given by
// the `slug` parameter. SetParams with a new slug switches products.
func (s *Storefront) WatchProduct(slug string) *collection.Controller[ProductDetail] {
	fetcher := collection.FuncFetcher[ProductDetail](func(ctx context.Context, req collection.Request) (collection.Result[ProductDetail], error) {
		d, err := s.ProductDetail(ctx, req.String("slug"))
		return collection.Result[ProductDetail]{Data: d}, err
	})
	return collection.New[ProductDetail](fetcher, s.deps.controllerOptions(ListOptions{
		Params: map[string]any{"slug": slug},
	}))
}

// BuildProductDetail derives the storefront detail of a product.
func BuildProductDetail(p model.Product) ProductDetail {
	images := lo.FilterMap(sortedGalleries(p.Galleries), func(g model.ProductGallery, _ int) (string, bool) {
		return g.Image, g.Image != ""
	})
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}

	details := collectAttributes(p.Additionals)
	d := ProductDetail{
		ID:      p.ID.String(),
		Name:    p.Name,
		Slug:    p.Slug,
		Images:  images,
		Pricing: ComputePricing(p.Additionals),
		Colors:  valuesForKey(details, colorKey),
		Sizes:   valuesForKey(details, sizeKey),
		Details: details,
		InStock: lo.SomeBy(p.Additionals, func(a model.ProductAdditional) bool { return a.Stock > 0 }),
	}
	if p.Category != nil {
		d.Category = p.Category.Name
	}
	return d
}

// Featured returns the first page of products as featured cards.
func (s *Storefront) Featured(ctx context.Context) ([]FeaturedProduct, error) {
	res, err := query[model.PagedItems[model.Product]](ctx, s.deps.API, "getProducts", getProductsFeaturedQuery,
		map[string]any{"page": 1, "limit": FeaturedLimit})
	if err != nil {
		return nil, err
	}
	return lo.Map(res.Items, func(p model.Product, _ int) FeaturedProduct {
		return BuildFeatured(p)
	}), nil
}

// BuildFeatured derives a featured card: the first gallery image by order,
// or the main image.
func BuildFeatured(p model.Product) FeaturedProduct {
	f := FeaturedProduct{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Image:         p.Image,
		IsHighlight:   p.IsHighlight,
		IsRecommended: p.IsRecommended,
		IsUpsell:      p.IsUpsell,
		Pricing:       ComputePricing(p.Additionals),
	}
	if g := sortedGalleries(p.Galleries); len(g) > 0 && g[0].Image != "" {
		f.Image = g[0].Image
	}
	if p.Category != nil {
		f.Category = p.Category.Name
	}
	return f
}

// LandingCategories returns the categories shown on the landing page.
func (s *Storefront) LandingCategories(ctx context.Context) ([]model.ProductCategory, error) {
	return query[[]model.ProductCategory](ctx, s.deps.API, "getProductCategories", getLandingCategoriesQuery, nil)
}

func sortedGalleries(g []model.ProductGallery) []model.ProductGallery {
	out := slices.Clone(g)
	slices.SortStableFunc(out, func(a, b model.ProductGallery) int { return a.Orders - b.Orders })
	return out
}
