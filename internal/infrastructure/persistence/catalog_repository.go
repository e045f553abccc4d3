package persistence

import (
	"context"

	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	gormStore[catalog.Category]
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{gormStore: newGormStore[catalog.Category](db, "category", NamedEntitySortFields)}
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	gormStore[catalog.Product]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{gormStore: newGormStore[catalog.Product](db, "product", ProductSortFields)}
}

// Create inserts the product at version 1 unless it already carries one
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if p.Version < 1 {
		p.Version = 1
	}
	return r.gormStore.Create(ctx, p)
}

// Update writes the product only if its version still matches the one it was read at, and bumps
// it. A mismatch means a stock movement or another edit landed in between.
func (r *GormProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	expected := p.Version
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ? AND version = ?", p.ID, expected).
		Updates(map[string]any{
			"name":          p.Name,
			"category_id":   p.CategoryID,
			"price":         p.Price,
			"quantity":      p.Quantity,
			"min_threshold": p.MinThreshold,
			"visible":       p.Visible,
			"version":       expected + 1,
			"updated_at":    p.UpdatedAt,
		})
	if result.Error != nil {
		return shared.NewPersistenceError("update product", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return shared.NewStateConflictError("product was modified concurrently").
			With("product_id", p.ID).
			With("version", expected)
	}
	p.Version = expected + 1
	return nil
}

// GetByIDs loads several products in one query
func (r *GormProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, shared.NewPersistenceError("get products", err)
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// ListByCategory lists the products of one category with the common filter applied
func (r *GormProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("category_id = ?", categoryID)
	return r.listWhere(ctx, filter, query)
}

// CountVisibleByCategory counts visible products referencing the category
func (r *GormProductRepository) CountVisibleByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("category_id = ? AND visible = ?", categoryID, true).
		Count(&n).Error
	if err != nil {
		return 0, shared.NewPersistenceError("count products by category", err)
	}
	return n, nil
}

// SetQuantity overwrites the stock level
func (r *GormProductRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if err := catalog.ValidateQuantity(quantity); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": shared.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("set product quantity", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product", id)
	}
	return nil
}

// AdjustQuantity applies delta with a guarded update so concurrent writers can never drive
// the stock level out of range
func (r *GormProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ? AND quantity + ? >= 0 AND quantity + ? <= ?", id, delta, delta, catalog.MaxQuantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": shared.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("adjust product quantity", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if delta < 0 {
		return shared.NewInsufficientStockError(p.ID, p.Name, -delta, p.Quantity)
	}
	return shared.NewValidationError("quantity", "quantity would exceed 999,999").
		With("product_id", p.ID).
		With("quantity", p.Quantity+delta)
}

var (
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
	_ catalog.ProductRepository  = (*GormProductRepository)(nil)
)
