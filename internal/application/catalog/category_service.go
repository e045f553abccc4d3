// Package catalog implements the journaled commands for categories and products.
package catalog

import (
	"context"
	"fmt"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	recorder     appjournal.MutationRecorder
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	recorder appjournal.MutationRecorder,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	id := category.ID
	// A failed append is logged by the recorder; the category stays created.
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionAddCategory,
		Description: fmt.Sprintf("Added category '%s'", category.Name),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("category created", zap.String("category_id", id.String()), zap.String("name", category.Name))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	before := category.Snapshot()
	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionUpdateCategory,
		Description: fmt.Sprintf("Updated category '%s'", category.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete hides a category. Categories still holding visible products cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.getVisible(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountVisibleByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewStateConflictError("category still has products").
			With("category_id", id).
			With("product_count", count)
	}

	before := category.Snapshot()
	if err := s.categoryRepo.SetVisible(ctx, id, false); err != nil {
		return err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionDeleteCategory,
		Description: fmt.Sprintf("Deleted category '%s'", category.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("category deleted", zap.String("category_id", id.String()))
	return nil
}

// GetByID retrieves a visible category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves visible categories
func (s *CategoryService) List(ctx context.Context, filter shared.Filter) ([]CategoryResponse, error) {
	filter.IncludeHidden = false
	categories, err := s.categoryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

func (s *CategoryService) getVisible(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsVisible() {
		return nil, shared.NewNotFoundError("category", id)
	}
	return category, nil
}
