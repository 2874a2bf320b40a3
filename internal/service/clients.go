package service

import (
	"context"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const (
	getClientsQuery = `query GetClients($page: Int!, $limit: Int!, $is_active: Boolean) {
  getClients(pagination: { page: $page, limit: $limit }, is_active: $is_active) {
    items { id name logo orders }
    ` + pageInfoFields + `
  }
}`
	getClientDetailQuery = `query GetClientDetail($id: Int!) {
  getClientDetail(id: $id) { id name logo orders is_active }
}`
	createClientMutation = `mutation CreateClient($name: String!, $logo: String!, $orders: Int!, $is_active: Boolean!) {
  createClient(name: $name, logo: $logo, orders: $orders, is_active: $is_active) { id name logo orders is_active }
}`
	updateClientMutation = `mutation UpdateClient($id: Int!, $name: String!, $logo: String, $orders: Int, $is_active: Boolean) {
  updateClient(id: $id, name: $name, logo: $logo, orders: $orders, is_active: $is_active) { id name logo orders is_active }
}`
	deleteClientMutation = `mutation DeleteClient($id: Int!) {
  deleteClient(id: $id)
}`
)

// Clients manages the customer logos of the landing page.
type Clients struct {
	deps Deps
}

// NewClients creates the client service.
func NewClients(d Deps) *Clients {
	return &Clients{deps: d}
}

// List returns a controller over the server-paged client list. The
// `is_active` parameter filters on the server, `keyword` filters names
// within the loaded page.
func (s *Clients) List(o ListOptions) *collection.Controller[[]model.Client] {
	fetcher := serverPaged[model.Client]{
		api:    s.deps.API,
		field:  "getClients",
		doc:    getClientsQuery,
		finish: func(c *model.Client, active bool) { c.IsActive = active },
		name:   func(c model.Client) string { return c.Name },
	}
	return collection.New[[]model.Client](fetcher, s.deps.controllerOptions(o))
}

// Detail returns one client.
func (s *Clients) Detail(ctx context.Context, id int) (model.Client, error) {
	return queryOne[model.Client](ctx, s.deps.API, "getClientDetail", getClientDetailQuery, map[string]any{"id": id})
}

// Create creates a client.
func (s *Clients) Create(ctx context.Context, in model.ClientInput) (model.Client, error) {
	return queryOne[model.Client](ctx, s.deps.API, "createClient", createClientMutation, map[string]any{
		"name":      in.Name,
		"logo":      in.Logo,
		"orders":    in.Orders,
		"is_active": in.IsActive,
	})
}

// Update replaces a client.
func (s *Clients) Update(ctx context.Context, id int, in model.ClientInput) (model.Client, error) {
	return queryOne[model.Client](ctx, s.deps.API, "updateClient", updateClientMutation, map[string]any{
		"id":        id,
		"name":      in.Name,
		"logo":      nullable(in.Logo),
		"orders":    in.Orders,
		"is_active": in.IsActive,
	})
}

// UpdateLogo replaces the logo. The mutation requires the name, so it is
// looked up first.
func (s *Clients) UpdateLogo(ctx context.Context, id int, logoURL string) (model.Client, error) {
	current, err := s.Detail(ctx, id)
	if err != nil {
		return model.Client{}, err
	}
	return queryOne[model.Client](ctx, s.deps.API, "updateClient", updateClientMutation, map[string]any{
		"id":   id,
		"name": current.Name,
		"logo": logoURL,
	})
}

// Delete removes a client.
func (s *Clients) Delete(ctx context.Context, id int) (bool, error) {
	return query[bool](ctx, s.deps.API, "deleteClient", deleteClientMutation, map[string]any{"id": id})
}
