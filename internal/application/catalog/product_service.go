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

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	recorder     appjournal.MutationRecorder
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	recorder appjournal.MutationRecorder,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new product in an existing category
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Fields())
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	id := product.ID
	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionAddProduct,
		Description: fmt.Sprintf("Added product '%s'", product.Name),
		TargetID:    &id,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("product created", zap.String("product_id", id.String()), zap.String("name", product.Name))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces every mutable field of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	before := product.Snapshot()
	if err := product.Update(req.Fields()); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionUpdateProduct,
		Description: fmt.Sprintf("Updated product '%s'", product.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete hides a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.getVisible(ctx, id)
	if err != nil {
		return err
	}

	before := product.Snapshot()
	if err := s.productRepo.SetVisible(ctx, id, false); err != nil {
		return err
	}

	if _, err := s.recorder.Record(ctx, appjournal.Record{
		ActionType:  journal.ActionDeleteProduct,
		Description: fmt.Sprintf("Deleted product '%s'", product.Name),
		TargetID:    &id,
		Snapshot:    before,
	}); err != nil {
		s.logger.Warn("change applied without a journal entry", zap.Error(err))
	}
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// GetByID retrieves a visible product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves visible products
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, error) {
	filter.IncludeHidden = false
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// ListByCategory retrieves the visible products of a visible category
func (s *ProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]ProductResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsVisible() {
		return nil, shared.NewNotFoundError("category", categoryID)
	}
	filter.IncludeHidden = false
	products, err := s.productRepo.ListByCategory(ctx, categoryID, filter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

func (s *ProductService) getVisible(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsVisible() {
		return nil, shared.NewNotFoundError("product", id)
	}
	return product, nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if shared.IsNotFound(err) || (err == nil && !category.IsVisible()) {
		return shared.NewValidationError("category_id", "category does not exist").With("category_id", id)
	}
	return err
}
