package service

import (
	"context"
	"math"

	"github.com/me/storecms/pkg/model"
)

const additionalFields = `id name price moq stock discount discount_type attributes product_id created_at updated_at`

const (
	getProductAdditionalsQuery = `query GetProductAdditionals($productId: Int!) {
  getProductAdditionals(product_id: $productId) { ` + additionalFields + ` }
}`
	getProductAdditionalDetailQuery = `query GetProductAdditionalDetail($id: Int!) {
  getProductAdditionalDetail(id: $id) { ` + additionalFields + ` }
}`
	createProductAdditionalMutation = `mutation CreateProductAdditional($name: String!, $moq: Int!, $price: Int!, $stock: Int!, $discount: Int, $discount_type: String, $attributes: String, $product_id: Int!) {
  createProductAdditional(name: $name, moq: $moq, price: $price, stock: $stock, discount: $discount, discount_type: $discount_type, attributes: $attributes, product_id: $product_id) { ` + additionalFields + ` }
}`
	updateProductAdditionalMutation = `mutation UpdateProductAdditional($id: Int!, $name: String!, $moq: Int!, $price: Int!, $stock: Int!, $discount: Int!, $discount_type: String!, $attributes: String!) {
  updateProductAdditional(id: $id, name: $name, moq: $moq, price: $price, stock: $stock, discount: $discount, discount_type: $discount_type, attributes: $attributes) { ` + additionalFields + ` }
}`
	deleteProductAdditionalMutation = `mutation DeleteProductAdditional($id: Int!) {
  deleteProductAdditional(id: $id)
}`
)

// Additionals manages product variants.
type Additionals struct {
	api API
}

// NewAdditionals creates the additionals service.
func NewAdditionals(d Deps) *Additionals {
	return &Additionals{api: d.API}
}

// List returns the additionals of a product.
func (s *Additionals) List(ctx context.Context, productID int) ([]model.ProductAdditional, error) {
	return query[[]model.ProductAdditional](ctx, s.api, "getProductAdditionals", getProductAdditionalsQuery,
		map[string]any{"productId": productID})
}

// Detail returns one additional.
func (s *Additionals) Detail(ctx context.Context, id int) (model.ProductAdditional, error) {
	return queryOne[model.ProductAdditional](ctx, s.api, "getProductAdditionalDetail", getProductAdditionalDetailQuery,
		map[string]any{"id": id})
}

// Create adds an additional to a product.
func (s *Additionals) Create(ctx context.Context, productID int, a model.ProductAdditional) (model.ProductAdditional, error) {
	vars := additionalVars(normalizeAdditional(a))
	vars["product_id"] = productID
	return queryOne[model.ProductAdditional](ctx, s.api, "createProductAdditional", createProductAdditionalMutation, vars)
}

// Update replaces an additional. Missing discount type and attributes get
// their defaults.
func (s *Additionals) Update(ctx context.Context, id int, a model.ProductAdditional) (model.ProductAdditional, error) {
	vars := additionalVars(normalizeAdditional(a))
	vars["id"] = id
	return queryOne[model.ProductAdditional](ctx, s.api, "updateProductAdditional", updateProductAdditionalMutation, vars)
}

// Delete removes an additional.
func (s *Additionals) Delete(ctx context.Context, id int) (bool, error) {
	return query[bool](ctx, s.api, "deleteProductAdditional", deleteProductAdditionalMutation, map[string]any{"id": id})
}

func normalizeAdditional(a model.ProductAdditional) model.ProductAdditional {
	if a.DiscountType == "" {
		a.DiscountType = model.DiscountAmount
	}
	if a.Attributes == "" {
		a.Attributes = "[]"
	}
	return a
}

// additionalVars encodes the write fields. The backend takes whole-number
// prices and discounts.
func additionalVars(a model.ProductAdditional) map[string]any {
	return map[string]any{
		"name":          a.Name,
		"moq":           a.MOQ,
		"price":         int(math.Round(a.Price)),
		"stock":         a.Stock,
		"discount":      int(math.Round(a.Discount)),
		"discount_type": a.DiscountType,
		"attributes":    a.Attributes,
	}
}
