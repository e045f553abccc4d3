package inventory

import (
	"context"
	"time"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	shared.Filter
	Kind   *TransactionKind
	Status *TransactionStatus
	// From and To bound the creation time, both inclusive
	From *time.Time
	To   *time.Time
}

// TransactionRepository stores stock transactions with their lines
type TransactionRepository interface {
	// Create persists the header and every line together
	Create(ctx context.Context, tx *StockTransaction) error
	// GetByID loads a transaction with its lines, visible or not
	GetByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)
	// UpdateStatus persists the status fields only if the stored status still equals from
	UpdateStatus(ctx context.Context, tx *StockTransaction, from TransactionStatus) error
	// UpdatePending writes kind, note and the full line set while the stored status is still PENDING
	UpdatePending(ctx context.Context, tx *StockTransaction) error
	SetVisible(ctx context.Context, id uuid.UUID, visible bool) error
	List(ctx context.Context, filter TransactionFilter) ([]StockTransaction, error)
}
