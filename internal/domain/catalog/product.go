package catalog

import (
	"strings"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product bounds
const (
	MaxProductNameLength = 200
	MaxQuantity          = 999_999
)

// MaxPrice is the highest accepted unit price
var MaxPrice = decimal.NewFromInt(999_999_999)

// Snapshot field names for products
const (
	FieldProductName  = "name"
	FieldCategoryID   = "category_id"
	FieldPrice        = "price"
	FieldQuantity     = "quantity"
	FieldMinThreshold = "min_threshold"
)

// Product is a stocked item. Version is bumped by every write, including stock movements, and
// guards full-row updates against stale reads.
type Product struct {
	shared.BaseEntity
	Name         string          `gorm:"type:varchar(200);not null;index"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Quantity     int             `gorm:"not null;default:0"`
	MinThreshold int             `gorm:"not null;default:0"`
	Version      int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductFields are the mutable attributes of a product
type ProductFields struct {
	Name         string
	CategoryID   uuid.UUID
	Price        decimal.Decimal
	Quantity     int
	MinThreshold int
}

// NewProduct creates a visible product
func NewProduct(f ProductFields) (*Product, error) {
	f.Name = strings.TrimSpace(f.Name)
	if err := f.validate(); err != nil {
		return nil, err
	}
	p := &Product{BaseEntity: shared.NewBaseEntity(), Version: 1}
	p.apply(f)
	return p, nil
}

// Update replaces every mutable field
func (p *Product) Update(f ProductFields) error {
	f.Name = strings.TrimSpace(f.Name)
	if err := f.validate(); err != nil {
		return err
	}
	p.apply(f)
	p.Touch()
	return nil
}

// Fields returns the current mutable attributes
func (p *Product) Fields() ProductFields {
	return ProductFields{
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Quantity:     p.Quantity,
		MinThreshold: p.MinThreshold,
	}
}

// IsLowStock reports whether quantity has fallen to the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinThreshold
}

// Snapshot captures the mutable fields before an update or delete
func (p *Product) Snapshot() journal.Snapshot {
	return journal.Snapshot{
		FieldProductName:  p.Name,
		FieldCategoryID:   p.CategoryID.String(),
		FieldPrice:        p.Price.String(),
		FieldQuantity:     p.Quantity,
		FieldMinThreshold: p.MinThreshold,
	}
}

// QuantitySnapshot captures only the quantity, for stock movements
func (p *Product) QuantitySnapshot() journal.Snapshot {
	return journal.Snapshot{FieldQuantity: p.Quantity}
}

// Restore re-applies fields captured by Snapshot. Fields absent from the snapshot are left as is.
func (p *Product) Restore(s journal.Snapshot) error {
	f := p.Fields()
	var err error
	if s.Has(FieldProductName) {
		if f.Name, err = s.String(FieldProductName); err != nil {
			return err
		}
	}
	if s.Has(FieldCategoryID) {
		if f.CategoryID, err = s.UUID(FieldCategoryID); err != nil {
			return err
		}
	}
	if s.Has(FieldPrice) {
		if f.Price, err = s.Decimal(FieldPrice); err != nil {
			return err
		}
	}
	if s.Has(FieldQuantity) {
		if f.Quantity, err = s.Int(FieldQuantity); err != nil {
			return err
		}
	}
	if s.Has(FieldMinThreshold) {
		if f.MinThreshold, err = s.Int(FieldMinThreshold); err != nil {
			return err
		}
	}
	p.apply(f)
	p.Touch()
	return nil
}

func (p *Product) apply(f ProductFields) {
	p.Name = f.Name
	p.CategoryID = f.CategoryID
	p.Price = f.Price
	p.Quantity = f.Quantity
	p.MinThreshold = f.MinThreshold
}

func (f ProductFields) validate() error {
	if f.Name == "" {
		return shared.NewValidationError("name", "product name cannot be empty")
	}
	if len([]rune(f.Name)) > MaxProductNameLength {
		return shared.NewValidationError("name", "product name cannot exceed 200 characters")
	}
	if f.CategoryID == uuid.Nil {
		return shared.NewValidationError("category_id", "category is required")
	}
	if f.Price.IsNegative() || f.Price.GreaterThan(MaxPrice) {
		return shared.NewValidationError("price", "price must be between 0 and 999,999,999").
			With("price", f.Price.String())
	}
	if err := ValidateQuantity(f.Quantity); err != nil {
		return err
	}
	if f.MinThreshold < 0 || f.MinThreshold > f.Quantity {
		return shared.NewValidationError("min_threshold", "minimum threshold must be between 0 and the quantity").
			With("min_threshold", f.MinThreshold).
			With("quantity", f.Quantity)
	}
	return nil
}

// ValidateQuantity checks a stock level against the accepted range
func ValidateQuantity(q int) error {
	if q < 0 || q > MaxQuantity {
		return shared.NewValidationError("quantity", "quantity must be between 0 and 999,999").
			With("quantity", q)
	}
	return nil
}
