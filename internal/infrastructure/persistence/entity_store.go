package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormStore implements shared.EntityStore for any model embedding shared.BaseEntity
type gormStore[T any] struct {
	db         *gorm.DB
	entity     string
	sortFields map[string]bool
}

func newGormStore[T any](db *gorm.DB, entity string, sortFields map[string]bool) gormStore[T] {
	return gormStore[T]{db: db, entity: entity, sortFields: sortFields}
}

// GetByID finds a row by ID regardless of visibility
func (s gormStore[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(s.entity, id)
		}
		return nil, shared.NewPersistenceError("get "+s.entity, err)
	}
	return &out, nil
}

// Create inserts the row with the ID it already carries
func (s gormStore[T]) Create(ctx context.Context, entity *T) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return shared.NewPersistenceError("create "+s.entity, err)
	}
	return nil
}

// Update writes every column except the identity and creation time
func (s gormStore[T]) Update(ctx context.Context, entity *T) error {
	result := s.db.WithContext(ctx).Model(entity).Select("*").Omit("id", "created_at").Updates(entity)
	if result.Error != nil {
		return shared.NewPersistenceError("update "+s.entity, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(s.entity, idOf(entity))
	}
	return nil
}

// SetVisible soft-deletes or restores a row
func (s gormStore[T]) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	result := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update("visible", visible)
	if result.Error != nil {
		return shared.NewPersistenceError("set "+s.entity+" visibility", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(s.entity, id)
	}
	return nil
}

// List returns rows matching the filter, visible rows only unless asked otherwise
func (s gormStore[T]) List(ctx context.Context, filter shared.Filter) ([]T, error) {
	return s.listWhere(ctx, filter, s.db.WithContext(ctx).Model(new(T)))
}

// listWhere applies the common filter on top of a query already narrowed by the caller
func (s gormStore[T]) listWhere(ctx context.Context, filter shared.Filter, query *gorm.DB) ([]T, error) {
	if !filter.IncludeHidden {
		query = query.Where("visible = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	query = applyPaging(query, filter, s.sortFields)

	var out []T
	if err := query.Find(&out).Error; err != nil {
		return nil, shared.NewPersistenceError("list "+s.entity, err)
	}
	return out, nil
}

func applyPaging(query *gorm.DB, filter shared.Filter, sortFields map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, sortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}

func idOf(entity any) any {
	if e, ok := entity.(interface{ GetID() uuid.UUID }); ok {
		return e.GetID()
	}
	return nil
}
