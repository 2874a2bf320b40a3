package model

// Discount types understood by the backend.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountAmount     = "AMOUNT"
)

// Product is a catalogue product.
type Product struct {
	ID            ID                  `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	Image         string              `json:"image"`
	Category      *CategoryRef        `json:"category,omitempty"`
	IsHighlight   bool                `json:"is_highlight"`
	IsRecommended bool                `json:"is_recommended"`
	IsUpsell      bool                `json:"is_upsell"`
	IsActive      *bool               `json:"is_active,omitempty"`
	Galleries     []ProductGallery    `json:"galleries,omitempty"`
	Additionals   []ProductAdditional `json:"additionals,omitempty"`
	CreatedAt     string              `json:"created_at,omitempty"`
	UpdatedAt     string              `json:"updated_at,omitempty"`
}

// CategoryRef is the category summary embedded in a product.
type CategoryRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	Name              string
	Description       string
	Image             string
	ProductCategoryID int
	IsHighlight       bool
	IsRecommended     bool
	IsUpsell          bool
	IsActive          *bool
	Additionals       []ProductAdditional
	Galleries         []ProductGallery
}

// ProductGallery is one image of a product gallery.
type ProductGallery struct {
	ID        ID     `json:"id"`
	ProductID ID     `json:"product_id,omitempty"`
	Image     string `json:"image"`
	Orders    int    `json:"orders"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ProductAdditional is a purchasable variant of a product. Attributes is the
// JSON-encoded `[{key, value}]` list exactly as stored by the backend.
type ProductAdditional struct {
	ID           ID      `json:"id,omitempty"`
	ProductID    ID      `json:"product_id,omitempty"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	MOQ          int     `json:"moq"`
	Stock        int     `json:"stock"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discount_type"`
	Attributes   string  `json:"attributes"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// AttributePair is one decoded entry of ProductAdditional.Attributes.
type AttributePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductAttribute is an attribute definition managed over REST.
type ProductAttribute struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	CategoryID ID     `json:"category_id,omitempty"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	UpdatedBy  string `json:"updated_by,omitempty"`
}

// ProductAttributeInput is the REST payload for attribute writes.
type ProductAttributeInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}
