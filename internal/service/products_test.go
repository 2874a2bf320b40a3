package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/me/storecms/pkg/model"
)

func productRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		name := fmt.Sprintf("Hat %d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("Shirt %d", i)
		}
		rows[i] = map[string]any{"id": i + 1, "name": name, "slug": fmt.Sprintf("item-%d", i)}
	}
	return rows
}

func waitIdle(t *testing.T, wait func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestProducts_ListFiltersAndPagesLocally(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("getProducts", returns(productRows(45)))

	ctrl := NewProducts(deps).List(ListOptions{Limit: 10})
	defer ctrl.Close()
	waitIdle(t, ctrl.Wait)

	s := ctrl.State()
	if len(s.Data) != 10 || s.Pagination.Total != 45 || s.Pagination.Page != 0 {
		t.Fatalf("initial state = %d items, pagination %+v", len(s.Data), s.Pagination)
	}

	ctrl.SetParams(map[string]any{"keyword": " SHIRT "})
	waitIdle(t, ctrl.Wait)
	s = ctrl.State()
	if s.Pagination.Total != 15 {
		t.Errorf("filtered total = %d, want 15", s.Pagination.Total)
	}

	ctrl.ChangePage(1)
	waitIdle(t, ctrl.Wait)
	s = ctrl.State()
	if len(s.Data) != 5 || s.Pagination.Page != 1 {
		t.Errorf("page 1 = %d items, page %d", len(s.Data), s.Pagination.Page)
	}
	if s.Data[0].Name != "Shirt 30" {
		t.Errorf("first item = %q, want Shirt 30", s.Data[0].Name)
	}
}

func TestProducts_ListErrorKeepsData(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("getProducts", returns(productRows(2)))

	ctrl := NewProducts(deps).List(ListOptions{})
	defer ctrl.Close()
	waitIdle(t, ctrl.Wait)

	b.onGraphQL("getProducts", func(map[string]any) (any, string) { return nil, "database unavailable" })
	if _, err := ctrl.Refetch(context.Background()); err == nil || err.Error() == "" {
		t.Fatal("Refetch error = nil, want backend error")
	}
	if s := ctrl.State(); len(s.Data) != 2 {
		t.Errorf("data = %d items after failure, want 2", len(s.Data))
	}
}

func TestProducts_CreateAddsVariantsAndGalleries(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("createProduct", returns(map[string]any{"id": 12, "name": "Polo"}))
	b.onGraphQL("createProductAdditional", func(vars map[string]any) (any, string) {
		return map[string]any{"id": 1, "name": vars["name"]}, ""
	})
	b.onGraphQL("createProductGallery", returns(map[string]any{"id": 1}))

	active := true
	created, err := NewProducts(deps).Create(context.Background(), model.ProductInput{
		Name:              "Polo",
		ProductCategoryID: 4,
		IsActive:          &active,
		Additionals:       []model.ProductAdditional{{Name: "S", Price: 10.4}, {Name: "M", Price: 12}},
		Galleries:         []model.ProductGallery{{Image: "a.png", Orders: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "12" {
		t.Errorf("ID = %q, want 12", created.ID)
	}

	create := b.callsTo("createProduct")[0]
	if create.Variables["image"] != nil || create.Variables["is_active"] != true {
		t.Errorf("createProduct vars = %v", create.Variables)
	}
	adds := b.callsTo("createProductAdditional")
	if len(adds) != 2 {
		t.Fatalf("additionals created = %d, want 2", len(adds))
	}
	v := adds[0].Variables
	if v["product_id"] != float64(12) || v["price"] != float64(10) || v["discount_type"] != model.DiscountAmount || v["attributes"] != "[]" {
		t.Errorf("additional vars = %v", v)
	}
	if g := b.callsTo("createProductGallery"); len(g) != 1 || g[0].Variables["product_id"] != float64(12) {
		t.Errorf("gallery calls = %+v", g)
	}
}

func TestProducts_UpdateSyncsChildren(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("updateProduct", returns(map[string]any{"id": 5, "name": "Polo"}))
	b.onGraphQL("updateProductGallery", returns(map[string]any{"id": 9}))
	b.onGraphQL("createProductGallery", returns(map[string]any{"id": 10}))
	b.onGraphQL("getProductAdditionals", returns([]map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}))
	b.onGraphQL("updateProductAdditional", returns(map[string]any{"id": 1}))
	b.onGraphQL("createProductAdditional", returns(map[string]any{"id": 4}))
	b.onGraphQL("deleteProductAdditional", returns(true))

	_, err := NewProducts(deps).Update(context.Background(), 5, model.ProductInput{
		Name: "Polo",
		Galleries: []model.ProductGallery{
			{ID: "9", Orders: 2},
			{ID: "tmp-1", Image: "new.png", Orders: 3},
		},
		Additionals: []model.ProductAdditional{
			{ID: "1", Name: "S"},
			{Name: "XL"},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	upd := b.callsTo("updateProductGallery")
	if len(upd) != 1 || upd[0].Variables["id"] != float64(9) {
		t.Fatalf("gallery updates = %+v", upd)
	}
	if _, hasImage := upd[0].Variables["image"]; hasImage {
		t.Error("empty gallery image was sent")
	}
	if c := b.callsTo("createProductGallery"); len(c) != 1 || c[0].Variables["image"] != "new.png" {
		t.Errorf("gallery creates = %+v", c)
	}

	var deleted []float64
	for _, c := range b.callsTo("deleteProductAdditional") {
		deleted = append(deleted, c.Variables["id"].(float64))
	}
	slices.Sort(deleted)
	if !slices.Equal(deleted, []float64{2, 3}) {
		t.Errorf("deleted additionals = %v, want [2 3]", deleted)
	}
	if len(b.callsTo("createProductAdditional")) != 1 || len(b.callsTo("updateProductAdditional")) != 1 {
		t.Errorf("additional calls = %v", b.fields())
	}
}

func TestProducts_UpdateReportsSyncFailures(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("updateProduct", returns(map[string]any{"id": 5, "name": "Polo"}))
	b.onGraphQL("createProductGallery", func(map[string]any) (any, string) { return nil, "image required" })

	updated, err := NewProducts(deps).Update(context.Background(), 5, model.ProductInput{
		Name:      "Polo",
		Galleries: []model.ProductGallery{{Orders: 1}},
	})
	if err == nil {
		t.Fatal("expected sync error")
	}
	if updated.Name != "Polo" {
		t.Errorf("updated product not returned alongside the sync error")
	}
}

func TestProducts_UpdateRejectsOverflowingGalleryID(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("updateProduct", returns(map[string]any{"id": 5, "name": "Polo"}))
	b.onGraphQL("updateProductGallery", returns(map[string]any{"id": 0}))
	b.onGraphQL("createProductGallery", returns(map[string]any{"id": 10}))

	_, err := NewProducts(deps).Update(context.Background(), 5, model.ProductInput{
		Name:      "Polo",
		Galleries: []model.ProductGallery{{ID: "99999999999999999999", Orders: 1}},
	})
	if err == nil || !strings.Contains(err.Error(), "99999999999999999999") {
		t.Fatalf("err = %v, want gallery sync error", err)
	}
	if n := len(b.callsTo("updateProductGallery")) + len(b.callsTo("createProductGallery")); n != 0 {
		t.Errorf("gallery calls = %d, want 0", n)
	}
}

func TestProducts_RESTWrites(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onREST("DELETE /cms/v1/product/5", func(*http.Request) (int, any) {
		return http.StatusOK, map[string]any{"success": true}
	})
	b.onREST("PUT /cms/v1/product/5/gallery", func(r *http.Request) (int, any) {
		q := r.URL.Query()
		if q.Get("newFile") != "a.png,b.png" || q.Get("removeId") != "7" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		return http.StatusOK, map[string]any{"success": true}
	})
	b.onREST("DELETE /cms/v1/product/6", func(*http.Request) (int, any) {
		return http.StatusNotFound, map[string]any{"message": "not found"}
	})

	p := NewProducts(deps)
	ctx := context.Background()
	if err := p.Delete(ctx, "5"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := p.UpdateGalleries(ctx, "5", []string{"a.png", "b.png"}, []string{"7"}); err != nil {
		t.Errorf("UpdateGalleries: %v", err)
	}
	if err := p.Delete(ctx, "6"); err == nil {
		t.Error("Delete of missing product succeeded")
	}
}

func TestProducts_DetailNull(t *testing.T) {
	b, deps := newFakeBackend(t)
	b.onGraphQL("getProductDetail", returns(nil))

	_, err := NewProducts(deps).Detail(context.Background(), 99)
	if err == nil {
		t.Fatal("expected ErrNotFound")
	}
}
