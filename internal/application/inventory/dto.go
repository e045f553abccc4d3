package inventory

import (
	"time"

	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchLineRequest is one product line of a new transaction. A missing unit price takes the
// product's current price; an explicit zero is kept.
type BatchLineRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required,min=1,max=999999"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
}

// UpdateTransactionRequest changes the kind and note of a pending transaction
type UpdateTransactionRequest struct {
	Kind inventory.TransactionKind `json:"kind" binding:"required,oneof=IMPORT EXPORT"`
	Note string                    `json:"note" binding:"max=500"`
}

// UpdateLineRequest changes one line of a pending transaction. Omitted prices are kept.
type UpdateLineRequest struct {
	Quantity     int              `json:"quantity" binding:"required,min=1,max=999999"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
}

// CreateBatchRequest represents a request to create a pending import or export
type CreateBatchRequest struct {
	Kind      inventory.TransactionKind `json:"kind" binding:"required,oneof=IMPORT EXPORT"`
	Lines     []BatchLineRequest        `json:"lines" binding:"required,min=1,dive"`
	Note      string                    `json:"note" binding:"max=500"`
	PartnerID *uuid.UUID                `json:"partner_id"`
	CreatedBy string                    `json:"created_by" binding:"required,max=100"`
}

// StockMovementRequest represents a direct import or export of one product
type StockMovementRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1,max=999999"`
	Note     string `json:"note" binding:"max=500"`
}

// TransactionListFilter narrows a transaction listing
type TransactionListFilter struct {
	shared.Filter
	Kind   *inventory.TransactionKind
	Status *inventory.TransactionStatus
	From   *time.Time
	To     *time.Time
}

// TransactionLineResponse represents a transaction line in API responses
type TransactionLineResponse struct {
	LineNo       int             `json:"line_no"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// TransactionResponse represents a stock transaction in API responses
type TransactionResponse struct {
	ID            uuid.UUID                   `json:"id"`
	Kind          inventory.TransactionKind   `json:"kind"`
	Status        inventory.TransactionStatus `json:"status"`
	CreatedBy     string                      `json:"created_by"`
	Note          string                      `json:"note"`
	PartnerID     *uuid.UUID                  `json:"partner_id,omitempty"`
	TotalQuantity int                         `json:"total_quantity"`
	TotalValue    decimal.Decimal             `json:"total_value"`
	Lines         []TransactionLineResponse   `json:"lines"`
	CreatedAt     time.Time                   `json:"created_at"`
	ApprovedAt    *time.Time                  `json:"approved_at,omitempty"`
	CancelledAt   *time.Time                  `json:"cancelled_at,omitempty"`
}

// ToTransactionResponse converts a domain StockTransaction to TransactionResponse
func ToTransactionResponse(tx *inventory.StockTransaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(tx.Lines))
	for i, l := range tx.Lines {
		lines[i] = TransactionLineResponse{
			LineNo:       l.LineNo,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			DiscountRate: l.DiscountRate,
			Amount:       l.Amount(),
		}
	}
	return TransactionResponse{
		ID:            tx.ID,
		Kind:          tx.Kind,
		Status:        tx.Status,
		CreatedBy:     tx.CreatedBy,
		Note:          tx.Note,
		PartnerID:     tx.PartnerID,
		TotalQuantity: tx.TotalQuantity(),
		TotalValue:    tx.TotalValue(),
		Lines:         lines,
		CreatedAt:     tx.CreatedAt,
		ApprovedAt:    tx.ApprovedAt,
		CancelledAt:   tx.CancelledAt,
	}
}

// StockMovementResponse reports the stock level after a direct movement
type StockMovementResponse struct {
	ProductID        uuid.UUID `json:"product_id"`
	PreviousQuantity int       `json:"previous_quantity"`
	Quantity         int       `json:"quantity"`
}
