// Package services – ModelService
//
// This file implements the profile use cases that sit above the repository:
// listing with validated filters, direct lookup by id, free-text search and
// the per-category grouping used by the search page. Each use case is a thin
// orchestration; the one responsibility added here is validating untrusted
// filters before they reach the repository.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ModelRepo defines the repository contract required by ModelService.
type ModelRepo interface {
	// FindAll lists profiles; nil filters means no filtering.
	FindAll(ctx context.Context, filters *domain.ProfileFilters) ([]domain.Profile, *domain.ListMeta, error)
	// FindByID returns (nil, nil) when the profile does not exist.
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	// Search lists profiles matching a free-text query.
	Search(ctx context.Context, query string) ([]domain.Profile, error)
}

// CategoryGroup is one carousel of the search page.
type CategoryGroup struct {
	Category domain.Category
	Models   []domain.Profile
}

// ModelService provides the profile query use cases.
type ModelService struct {
	Repo ModelRepo
}

// NewModelService constructs a ModelService.
func NewModelService(r ModelRepo) *ModelService {
	return &ModelService{Repo: r}
}

// ListModels validates filters (when given) and lists matching profiles.
// Absence from a list is never an error.
func (s *ModelService) ListModels(ctx context.Context, filters *validation.ModelFiltersDTO) ([]domain.Profile, *domain.ListMeta, error) {
	ctx, span := otel.Tracer("services/ModelService").Start(ctx, "ListModels",
		trace.WithAttributes(attribute.Bool("filters.present", filters != nil)),
	)
	defer span.End()

	if filters == nil {
		return s.Repo.FindAll(ctx, nil)
	}
	f, err := validation.ValidateFilters(*filters)
	if err != nil {
		return nil, nil, err
	}
	return s.Repo.FindAll(ctx, &f)
}

// GetModelByID returns the profile or a *NotFoundError when the repository
// reports no such record.
func (s *ModelService) GetModelByID(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, span := otel.Tracer("services/ModelService").Start(ctx, "GetModelByID",
		trace.WithAttributes(attribute.String("model.id", id)),
	)
	defer span.End()

	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Kind: KindNotFound, Entity: "Model", ID: id}
	}
	return p, nil
}

// SearchModels trims the query; a blank query yields an empty result without
// touching the repository.
func (s *ModelService) SearchModels(ctx context.Context, query string) ([]domain.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Profile{}, nil
	}

	ctx, span := otel.Tracer("services/ModelService").Start(ctx, "SearchModels")
	defer span.End()

	return s.Repo.Search(ctx, query)
}

// ListByCategory lists every profile once and splits the result into the
// three categories in fixed order.
func (s *ModelService) ListByCategory(ctx context.Context) ([]CategoryGroup, error) {
	items, _, err := s.ListModels(ctx, nil)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(items), nil
}

// GroupByCategory buckets profiles by category, preserving their order within
// each bucket. All three categories are always present.
func GroupByCategory(items []domain.Profile) []CategoryGroup {
	groups := make([]CategoryGroup, len(domain.Categories))
	idx := make(map[domain.Category]int, len(domain.Categories))
	for i, c := range domain.Categories {
		groups[i] = CategoryGroup{Category: c, Models: []domain.Profile{}}
		idx[c] = i
	}
	for _, p := range items {
		if i, ok := idx[p.Category]; ok {
			groups[i].Models = append(groups[i].Models, p)
		}
	}
	return groups
}
