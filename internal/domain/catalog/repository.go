package catalog

import (
	"context"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository stores categories
type CategoryRepository interface {
	shared.EntityStore[Category]
}

// ProductRepository stores products. Update fails with a state conflict when the product's
// Version no longer matches the stored one.
type ProductRepository interface {
	shared.EntityStore[Product]
	// ListByCategory lists the products of one category
	ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)
	// GetByIDs returns the requested products keyed by ID; missing IDs are simply absent
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	// CountVisibleByCategory counts visible products in a category
	CountVisibleByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	// SetQuantity overwrites the stock level
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	// AdjustQuantity adds delta to the stock level only if the result stays within 0..MaxQuantity.
	// It fails with an insufficient-stock error when the guard rejects the change.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error
}
