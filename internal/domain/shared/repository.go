package shared

import (
	"context"

	"github.com/google/uuid"
)

// EntityStore is the per-kind persistence contract consumed by the command layer and the
// undo engine. Each call is atomic and durable on its own.
type EntityStore[T any] interface {
	// GetByID returns the entity whether or not it is visible
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	// Create inserts a new row, keeping the ID already set on the entity
	Create(ctx context.Context, entity *T) error
	// Update replaces every mutable field of an existing row
	Update(ctx context.Context, entity *T) error
	SetVisible(ctx context.Context, id uuid.UUID, visible bool) error
	List(ctx context.Context, filter Filter) ([]T, error)
}

// Filter represents query filter options
type Filter struct {
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
	Search        string
	IncludeHidden bool
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 50,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
