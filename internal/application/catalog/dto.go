package catalog

import (
	"time"

	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest represents a request to rename a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of domain Categories to responses
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}

// ProductRequest carries every mutable product field. Updates replace all of them.
type ProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	CategoryID   uuid.UUID       `json:"category_id" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" binding:"min=0,max=999999"`
	MinThreshold int             `json:"min_threshold" binding:"min=0"`
}

// Fields converts the request to domain fields
func (r ProductRequest) Fields() catalog.ProductFields {
	return catalog.ProductFields{
		Name:         r.Name,
		CategoryID:   r.CategoryID,
		Price:        r.Price,
		Quantity:     r.Quantity,
		MinThreshold: r.MinThreshold,
	}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	MinThreshold int             `json:"min_threshold"`
	LowStock     bool            `json:"low_stock"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Quantity:     p.Quantity,
		MinThreshold: p.MinThreshold,
		LowStock:     p.IsLowStock(),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
