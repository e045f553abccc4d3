package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides the identity and timestamps shared by every stored entity.
// Visible is the soft-delete flag: hidden rows stay in the store so undo can bring them back.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Visible   bool `gorm:"not null;default:true;index"`
}

// NewBaseEntity creates a new visible base entity with a generated ID
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Visible:   true,
	}
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// IsVisible reports whether the entity has not been soft-deleted
func (e *BaseEntity) IsVisible() bool {
	return e.Visible
}

// Touch updates the modification timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// Reinstate gives a blank entity the identity of a row that no longer exists, so it can be
// created again under its original ID
func (e *BaseEntity) Reinstate(id uuid.UUID) {
	now := Now()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Visible = true
}
