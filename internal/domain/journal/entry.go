package journal

import (
	"time"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Entry is one journal record. Visible entries ordered by CreatedAt then ID, newest first,
// form the undo stack.
type Entry struct {
	ID             int64             `gorm:"primaryKey;autoIncrement"`
	ActionType     ActionType        `gorm:"type:varchar(40);not null;index"`
	Description    string            `gorm:"type:text"`
	TargetID       *uuid.UUID        `gorm:"type:uuid;index"`
	BeforeSnapshot datatypes.JSONMap `gorm:"column:before_snapshot"`
	CreatedAt      time.Time         `gorm:"not null;index"`
	Visible        bool              `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "journal_entries"
}

// NewEntry creates a visible entry stamped with the current time
func NewEntry(actionType ActionType, description string, targetID *uuid.UUID, snapshot Snapshot) *Entry {
	var before datatypes.JSONMap
	if len(snapshot) > 0 {
		before = datatypes.JSONMap(snapshot)
	}
	return &Entry{
		ActionType:     actionType,
		Description:    description,
		TargetID:       targetID,
		BeforeSnapshot: before,
		CreatedAt:      shared.Now(),
		Visible:        true,
	}
}

// Snapshot returns the before-snapshot as a readable record
func (e *Entry) Snapshot() Snapshot {
	return Snapshot(e.BeforeSnapshot)
}

// Order is the listing direction for journal queries
type Order string

const (
	OrderNewestFirst Order = "desc"
	OrderOldestFirst Order = "asc"
)

// ListFilter narrows a journal listing
type ListFilter struct {
	ActionType *ActionType
	From       *time.Time
	To         *time.Time
	Order      Order
	Limit      int
}
