package catalog

import (
	"strings"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
)

// MaxCategoryNameLength is the longest accepted category name
const MaxCategoryNameLength = 100

// Snapshot field names for categories
const (
	FieldCategoryName = "name"
)

// Category groups products
type Category struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a visible category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// Rename replaces the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.Touch()
	return nil
}

// Snapshot captures the mutable fields before an update or delete
func (c *Category) Snapshot() journal.Snapshot {
	return journal.Snapshot{
		FieldCategoryName: c.Name,
	}
}

// Restore re-applies fields captured by Snapshot
func (c *Category) Restore(s journal.Snapshot) error {
	name, err := s.String(FieldCategoryName)
	if err != nil {
		return err
	}
	c.Name = name
	c.Touch()
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "category name cannot be empty")
	}
	if len([]rune(name)) > MaxCategoryNameLength {
		return shared.NewValidationError("name", "category name cannot exceed 100 characters")
	}
	return nil
}
