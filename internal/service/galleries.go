package service

import (
	"context"

	"github.com/me/storecms/pkg/model"
)

const galleryFields = `id product_id image orders created_at updated_at`

const (
	getProductGalleriesQuery = `query GetProductGalleries($productId: Int!) {
  getProductGalleries(product_id: $productId) { ` + galleryFields + ` }
}`
	getProductGalleryDetailQuery = `query GetProductGalleryDetail($id: Int!) {
  getProductGalleryDetail(id: $id) { ` + galleryFields + ` }
}`
	createProductGalleryMutation = `mutation CreateProductGallery($image: String!, $orders: Int!, $product_id: Int!) {
  createProductGallery(image: $image, orders: $orders, product_id: $product_id) { id product_id image orders }
}`
	updateProductGalleryMutation = `mutation UpdateProductGallery($id: Int!, $image: String, $orders: Int, $product_id: Int) {
  updateProductGallery(id: $id, image: $image, orders: $orders, product_id: $product_id) { id product_id image orders }
}`
	deleteProductGalleryMutation = `mutation DeleteProductGallery($id: Int!) {
  deleteProductGallery(id: $id)
}`
)

// Galleries manages product gallery images.
type Galleries struct {
	api API
}

// NewGalleries creates the galleries service.
func NewGalleries(d Deps) *Galleries {
	return &Galleries{api: d.API}
}

// List returns the gallery of a product.
func (s *Galleries) List(ctx context.Context, productID int) ([]model.ProductGallery, error) {
	return query[[]model.ProductGallery](ctx, s.api, "getProductGalleries", getProductGalleriesQuery,
		map[string]any{"productId": productID})
}

// Detail returns one gallery image.
func (s *Galleries) Detail(ctx context.Context, id int) (model.ProductGallery, error) {
	return queryOne[model.ProductGallery](ctx, s.api, "getProductGalleryDetail", getProductGalleryDetailQuery,
		map[string]any{"id": id})
}

// Create adds an image to a product gallery.
func (s *Galleries) Create(ctx context.Context, productID int, image string, orders int) (model.ProductGallery, error) {
	return queryOne[model.ProductGallery](ctx, s.api, "createProductGallery", createProductGalleryMutation, map[string]any{
		"image":      image,
		"orders":     orders,
		"product_id": productID,
	})
}

// Update changes the order of a gallery image and, when image is not empty,
// the image itself.
func (s *Galleries) Update(ctx context.Context, id int, image string, orders int) (model.ProductGallery, error) {
	vars := map[string]any{"id": id, "orders": orders}
	if image != "" {
		vars["image"] = image
	}
	return queryOne[model.ProductGallery](ctx, s.api, "updateProductGallery", updateProductGalleryMutation, vars)
}

// Delete removes a gallery image.
func (s *Galleries) Delete(ctx context.Context, id int) (bool, error) {
	return query[bool](ctx, s.api, "deleteProductGallery", deleteProductGalleryMutation, map[string]any{"id": id})
}
