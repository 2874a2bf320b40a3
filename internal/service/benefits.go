package service

import (
	"context"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/model"
)

const benefitFields = `id name logo question answer orders is_active`

const (
	getBenefitsQuery = `query GetBenefits($page: Int!, $limit: Int!, $is_active: Boolean) {
  getBenefits(pagination: { page: $page, limit: $limit }, is_active: $is_active) {
    items { id name logo question answer orders }
    ` + pageInfoFields + `
  }
}`
	getBenefitDetailQuery = `query GetBenefitDetail($id: Int!) {
  getBenefitDetail(id: $id) { ` + benefitFields + ` }
}`
	createBenefitMutation = `mutation CreateBenefit($name: String!, $logo: String!, $orders: Int!, $question: String!, $answer: String!, $is_active: Boolean!) {
  createBenefit(name: $name, logo: $logo, orders: $orders, question: $question, answer: $answer, is_active: $is_active) { ` + benefitFields + ` }
}`
	updateBenefitMutation = `mutation UpdateBenefit($id: Int!, $name: String!, $logo: String, $orders: Int, $question: String, $answer: String, $is_active: Boolean) {
  updateBenefit(id: $id, name: $name, logo: $logo, orders: $orders, question: $question, answer: $answer, is_active: $is_active) { ` + benefitFields + ` }
}`
	deleteBenefitMutation = `mutation DeleteBenefit($id: Int!) {
  deleteBenefit(id: $id)
}`
)

// Benefits manages the landing-page benefits and their FAQ entries.
type Benefits struct {
	deps Deps
}

// NewBenefits creates the benefit service.
func NewBenefits(d Deps) *Benefits {
	return &Benefits{deps: d}
}

// List returns a controller over the server-paged benefit list.
func (s *Benefits) List(o ListOptions) *collection.Controller[[]model.Benefit] {
	fetcher := serverPaged[model.Benefit]{
		api:    s.deps.API,
		field:  "getBenefits",
		doc:    getBenefitsQuery,
		finish: func(b *model.Benefit, active bool) { b.IsActive = active },
		name:   func(b model.Benefit) string { return b.Name },
	}
	return collection.New[[]model.Benefit](fetcher, s.deps.controllerOptions(o))
}

// Detail returns one benefit.
func (s *Benefits) Detail(ctx context.Context, id int) (model.Benefit, error) {
	return queryOne[model.Benefit](ctx, s.deps.API, "getBenefitDetail", getBenefitDetailQuery, map[string]any{"id": id})
}

// Create creates a benefit.
func (s *Benefits) Create(ctx context.Context, in model.BenefitInput) (model.Benefit, error) {
	return queryOne[model.Benefit](ctx, s.deps.API, "createBenefit", createBenefitMutation, map[string]any{
		"name":      in.Name,
		"logo":      in.Logo,
		"orders":    in.Orders,
		"question":  in.Question,
		"answer":    in.Answer,
		"is_active": in.IsActive,
	})
}

// Update replaces a benefit.
func (s *Benefits) Update(ctx context.Context, id int, in model.BenefitInput) (model.Benefit, error) {
	return queryOne[model.Benefit](ctx, s.deps.API, "updateBenefit", updateBenefitMutation, map[string]any{
		"id":        id,
		"name":      in.Name,
		"logo":      nullable(in.Logo),
		"orders":    in.Orders,
		"question":  nullable(in.Question),
		"answer":    nullable(in.Answer),
		"is_active": in.IsActive,
	})
}

// UpdateLogo replaces the logo, looking up the required name first.
func (s *Benefits) UpdateLogo(ctx context.Context, id int, logoURL string) (model.Benefit, error) {
	current, err := s.Detail(ctx, id)
	if err != nil {
		return model.Benefit{}, err
	}
	return queryOne[model.Benefit](ctx, s.deps.API, "updateBenefit", updateBenefitMutation, map[string]any{
		"id":   id,
		"name": current.Name,
		"logo": logoURL,
	})
}

// Delete removes a benefit.
func (s *Benefits) Delete(ctx context.Context, id int) (bool, error) {
	return query[bool](ctx, s.deps.API, "deleteBenefit", deleteBenefitMutation, map[string]any{"id": id})
}
