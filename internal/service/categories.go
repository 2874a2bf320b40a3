package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const categoryFields = `id name slug description image is_landing_page is_active created_at updated_at parent_id`

const (
	getProductCategoriesQuery = `query getProductCategories {
  getProductCategories { ` + categoryFields + ` }
}`
	getProductCategoryDetailQuery = `query GetProductCategoryDetail($id: Int!) {
  getProductCategoryDetail(id: $id) {
    id name slug description image is_landing_page is_active
    sub_categories { id name slug }
  }
}`
	getProductCategoriesChildQuery = `query GetProductCategoriesChild($parent_id: Int, $is_all: Boolean) {
  getProductCategoriesChild(parent_id: $parent_id, is_all: $is_all) { ` + categoryFields + ` }
}`
	createProductCategoryMutation = `mutation CreateProductCategory($name: String!, $slug: String!, $description: String, $image: String, $parent_id: Int, $is_landing_page: Boolean) {
  createProductCategory(name: $name, slug: $slug, description: $description, image: $image, parent_id: $parent_id, is_landing_page: $is_landing_page) { ` + categoryFields + ` }
}`
	updateProductCategoryMutation = `mutation UpdateProductCategory($id: Int!, $name: String!, $slug: String!, $description: String, $image: String, $parent_id: Int, $is_landing_page: Boolean, $is_active: Boolean) {
  updateProductCategory(id: $id, name: $name, slug: $slug, description: $description, image: $image, parent_id: $parent_id, is_landing_page: $is_landing_page, is_active: $is_active) { ` + categoryFields + ` }
}`
	updateProductCategoryImageMutation = `mutation UpdateProductCategoryImage($id: Int!, $image: String!) {
  updateProductCategory(id: $id, image: $image) { id image }
}`
	deleteProductCategoryMutation = `mutation DeleteProductCategory($id: Int!) {
  deleteProductCategory(id: $id)
}`
)

// subCategoryDescription is the description given to sub-categories created
// from a name list.
const subCategoryDescription = "-"

// Categories manages product categories and their sub-categories.
type Categories struct {
	deps Deps
}

// NewCategories creates the category service.
func NewCategories(d Deps) *Categories {
	return &Categories{deps: d}
}

// CategoryWrite is one create or update of a category row.
type CategoryWrite struct {
	Name          string
	Slug          string
	Description   string
	Image         string
	ParentID      *int
	IsLandingPage *bool
	IsActive      *bool
}

func (w CategoryWrite) vars() map[string]any {
	vars := map[string]any{
		"name":            w.Name,
		"slug":            w.Slug,
		"description":     nullable(w.Description),
		"image":           nullable(w.Image),
		"is_landing_page": nullableBool(w.IsLandingPage),
	}
	if w.ParentID != nil {
		vars["parent_id"] = *w.ParentID
	}
	return vars
}

// All returns every category, parents and children.
func (s *Categories) All(ctx context.Context) ([]model.ProductCategory, error) {
	return query[[]model.ProductCategory](ctx, s.deps.API, "getProductCategories", getProductCategoriesQuery, nil)
}

// List returns a controller over top-level categories, filtered by the
// `keyword` parameter against name and slug and paginated locally.
func (s *Categories) List(o ListOptions) *collection.Controller[[]model.ProductCategory] {
	pager := collection.LocalPager[model.ProductCategory]{
		Load: func(ctx context.Context, _ collection.Request) ([]model.ProductCategory, error) {
			return s.All(ctx)
		},
		Match: func(c model.ProductCategory, req collection.Request) bool {
			return c.IsParent() && matchesKeyword(req.Keyword(), c.Name, c.Slug)
		},
	}
	return collection.New[[]model.ProductCategory](pager, s.deps.controllerOptions(o))
}

// Parents returns the id and name of every category.
func (s *Categories) Parents(ctx context.Context) ([]model.Option, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(all, func(c model.ProductCategory, _ int) model.Option {
		return model.Option{ID: c.ID.String(), Label: c.Name}
	}), nil
}

// Detail returns a category with its sub-categories.
func (s *Categories) Detail(ctx context.Context, id int) (model.ProductCategory, error) {
	return queryOne[model.ProductCategory](ctx, s.deps.API, "getProductCategoryDetail", getProductCategoryDetailQuery,
		map[string]any{"id": id})
}

// SubCategoryNames returns the names of the children of parentID.
func (s *Categories) SubCategoryNames(ctx context.Context, parentID int) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	children := lo.Filter(all, func(c model.ProductCategory, _ int) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	})
	return lo.Map(children, func(c model.ProductCategory, _ int) string { return c.Name }), nil
}

// Children returns the child categories of parentID.
func (s *Categories) Children(ctx context.Context, parentID int) ([]model.ProductCategory, error) {
	all, err := query[[]model.ProductCategory](ctx, s.deps.API, "getProductCategoriesChild", getProductCategoriesChildQuery,
		map[string]any{"parent_id": parentID})
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(c model.ProductCategory, _ int) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}), nil
}

// Create creates one category row.
func (s *Categories) Create(ctx context.Context, w CategoryWrite) (model.ProductCategory, error) {
	return queryOne[model.ProductCategory](ctx, s.deps.API, "createProductCategory", createProductCategoryMutation, w.vars())
}

// Update updates one category row.
func (s *Categories) Update(ctx context.Context, id int, w CategoryWrite) (model.ProductCategory, error) {
	vars := w.vars()
	vars["id"] = id
	vars["is_active"] = nullableBool(w.IsActive)
	return queryOne[model.ProductCategory](ctx, s.deps.API, "updateProductCategory", updateProductCategoryMutation, vars)
}

// CreateWithSubs creates a top-level category and a child for each
// sub-category name. Blank names and names already present are skipped.
func (s *Categories) CreateWithSubs(ctx context.Context, in model.CategoryInput) (model.ProductCategory, error) {
	slug := in.Slug
	if slug == "" {
		slug = in.Name
	}
	parent, err := s.Create(ctx, CategoryWrite{
		Name:          in.Name,
		Slug:          Slugify(slug),
		Description:   in.Description,
		Image:         in.Image,
		IsLandingPage: &in.IsLandingPage,
	})
	if err != nil {
		return model.ProductCategory{}, err
	}
	if len(in.SubCategories) == 0 {
		return parent, nil
	}

	parentID, err := parent.ID.Int()
	if err != nil {
		return parent, err
	}
	existing, err := s.SubCategoryNames(ctx, parentID)
	if err != nil {
		return parent, err
	}
	for _, sub := range in.SubCategories {
		name := strings.TrimSpace(sub)
		if name == "" || lo.Contains(existing, name) {
			continue
		}
		if _, err := s.Create(ctx, CategoryWrite{
			Name:        name,
			Slug:        ChildSlug(parent.Slug, name),
			Description: subCategoryDescription,
			ParentID:    &parentID,
		}); err != nil {
			return parent, fmt.Errorf("create sub-category %q: %w", name, err)
		}
	}
	return parent, nil
}

// UpdateWithSubs updates a top-level category and creates any new
// sub-categories. Children whose slug already exists are skipped and a
// failing child does not stop the others.
func (s *Categories) UpdateWithSubs(ctx context.Context, id int, in model.CategoryInput) (model.ProductCategory, error) {
	updated, err := s.Update(ctx, id, CategoryWrite{
		Name:          in.Name,
		Slug:          in.Slug,
		Description:   in.Description,
		Image:         in.Image,
		IsLandingPage: &in.IsLandingPage,
	})
	if err != nil || len(in.SubCategories) == 0 {
		return updated, err
	}

	parent, err := s.Detail(ctx, id)
	if err != nil {
		return updated, err
	}
	children, err := s.Children(ctx, id)
	if err != nil {
		return updated, err
	}
	slugs := lo.SliceToMap(children, func(c model.ProductCategory) (string, struct{}) { return c.Slug, struct{}{} })

	for _, sub := range in.SubCategories {
		name := strings.TrimSpace(sub)
		if name == "" {
			continue
		}
		slug := ChildSlug(parent.Slug, name)
		if _, ok := slugs[slug]; ok {
			continue
		}
		if _, err := s.Create(ctx, CategoryWrite{
			Name:        name,
			Slug:        slug,
			Description: subCategoryDescription,
			ParentID:    &id,
		}); err != nil {
			s.deps.logger("categories").Warn("create sub-category failed", "name", name, "error", err)
			continue
		}
		slugs[slug] = struct{}{}
	}
	return updated, nil
}

// CreateChild creates a child under parentID with its slug prefixed by the
// parent's slug.
func (s *Categories) CreateChild(ctx context.Context, parentID int, in model.CategoryInput) (model.ProductCategory, error) {
	parent, err := s.Detail(ctx, parentID)
	if err != nil {
		return model.ProductCategory{}, err
	}
	base := in.Slug
	if base == "" {
		base = in.Name
	}
	return s.Create(ctx, CategoryWrite{
		Name:          in.Name,
		Slug:          ChildSlug(parent.Slug, base),
		Description:   in.Description,
		Image:         in.Image,
		ParentID:      &parentID,
		IsLandingPage: &in.IsLandingPage,
	})
}

// UpdateChild updates a child category, keeping its slug when none is given.
func (s *Categories) UpdateChild(ctx context.Context, childID int, in model.CategoryInput) (model.ProductCategory, error) {
	slug := in.Slug
	if slug == "" {
		current, err := s.Detail(ctx, childID)
		if err != nil {
			return model.ProductCategory{}, err
		}
		slug = current.Slug
	}
	return s.Update(ctx, childID, CategoryWrite{
		Name:          in.Name,
		Slug:          slug,
		Description:   in.Description,
		Image:         in.Image,
		IsLandingPage: &in.IsLandingPage,
		IsActive:      &in.IsActive,
	})
}

// UpdateImage replaces the category image.
func (s *Categories) UpdateImage(ctx context.Context, id int, imageURL string) (model.ProductCategory, error) {
	return queryOne[model.ProductCategory](ctx, s.deps.API, "updateProductCategory", updateProductCategoryImageMutation,
		map[string]any{"id": id, "image": imageURL})
}

// Delete removes a category.
func (s *Categories) Delete(ctx context.Context, id int) (bool, error) {
	return query[bool](ctx, s.deps.API, "deleteProductCategory", deleteProductCategoryMutation, map[string]any{"id": id})
}
