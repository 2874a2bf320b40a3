package model

// ProductCategory is a product category. Top-level categories have a nil
// ParentID.
type ProductCategory struct {
	ID            ID            `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description"`
	Image         string        `json:"image"`
	IsLandingPage bool          `json:"is_landing_page"`
	IsActive      bool          `json:"is_active"`
	ParentID      *int          `json:"parent_id"`
	SubCategories []SubCategory `json:"sub_categories,omitempty"`
	CreatedAt     string        `json:"created_at,omitempty"`
	UpdatedAt     string        `json:"updated_at,omitempty"`
}

// IsParent reports whether the category is top-level.
func (c ProductCategory) IsParent() bool { return c.ParentID == nil }

// SubCategory is the child summary returned with a category detail.
type SubCategory struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name          string
	Slug          string
	Description   string
	Image         string
	SubCategories []string
	IsLandingPage bool
	IsActive      bool
}

// Option is a select option (id + label) used by console forms.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
