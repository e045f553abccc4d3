package inventory

import (
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line bounds
const (
	MinLineQuantity = 1
	MaxLineQuantity = 999_999
)

var (
	maxUnitPrice    = decimal.NewFromInt(999_999_999)
	maxDiscountRate = decimal.NewFromInt(100)
	hundred         = decimal.NewFromInt(100)
)

// TransactionLine is one product entry of a stock transaction. ProductName is captured when the
// line is added and does not follow later renames.
type TransactionLine struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_line_tx_product,priority:1"`
	LineNo        int             `gorm:"not null"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_tx_product,priority:2"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	DiscountRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (TransactionLine) TableName() string {
	return "stock_transaction_lines"
}

// NewTransactionLine validates and builds a line
func NewTransactionLine(productID uuid.UUID, productName string, quantity int, unitPrice, discountRate decimal.Decimal) (TransactionLine, error) {
	if productID == uuid.Nil {
		return TransactionLine{}, shared.NewValidationError("product_id", "product is required")
	}
	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return TransactionLine{}, shared.NewValidationError("quantity", "line quantity must be between 1 and 999,999").
			With("product_id", productID).
			With("quantity", quantity)
	}
	if unitPrice.IsNegative() || unitPrice.GreaterThan(maxUnitPrice) {
		return TransactionLine{}, shared.NewValidationError("unit_price", "unit price must be between 0 and 999,999,999").
			With("product_id", productID)
	}
	if discountRate.IsNegative() || discountRate.GreaterThan(maxDiscountRate) {
		return TransactionLine{}, shared.NewValidationError("discount_rate", "discount rate must be between 0 and 100").
			With("product_id", productID)
	}
	return TransactionLine{
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		DiscountRate: discountRate,
	}, nil
}

// Amount is quantity × unit price less the discount
func (l TransactionLine) Amount() decimal.Decimal {
	gross := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return gross.Sub(gross.Mul(l.DiscountRate).Div(hundred)).Round(2)
}
