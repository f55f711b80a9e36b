package services

import (
	"context"
	"strings"

	"github.com/kev405/toolflow-backend/internal/audit"
	"github.com/kev405/toolflow-backend/types"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Category, int, error)
	Get(ctx context.Context, id int64) (types.Category, error)
	Create(ctx context.Context, category types.Category) (types.Category, error)
	Update(ctx context.Context, category types.Category) (types.Category, error)
	SetStatus(ctx context.Context, id int64, status types.CatalogStatus) error
}

// SaveCategory is the create/update payload for categories.
type SaveCategory struct {
	Name string `json:"name"`
}

// CategoryService implements catalog category use-cases.
type CategoryService struct {
	repo    CategoryRepository
	auditor *audit.Publisher
}

func NewCategoryService(repo CategoryRepository, auditor *audit.Publisher) *CategoryService {
	return &CategoryService{repo: repo, auditor: auditor}
}

func (s *CategoryService) List(ctx context.Context, offset, limit int) ([]types.Category, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (types.Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, save SaveCategory, actorID int64) (types.Category, error) {
	category := types.Category{
		Name:   strings.TrimSpace(save.Name),
		Status: types.StatusEnabled,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return types.Category{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "category.created", "category", created.ID, actorID)
	}
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, save SaveCategory, actorID int64) (types.Category, error) {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Category{}, err
	}

	category.Name = strings.TrimSpace(save.Name)

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return types.Category{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "category.updated", "category", id, actorID)
	}
	return updated, nil
}

// Disable soft-disables a category; the row is kept.
func (s *CategoryService) Disable(ctx context.Context, id, actorID int64) (types.Category, error) {
	if err := s.repo.SetStatus(ctx, id, types.StatusDisabled); err != nil {
		return types.Category{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, "category.disabled", "category", id, actorID)
	}
	return s.repo.Get(ctx, id)
}
