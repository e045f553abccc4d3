package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/shared"
	"gorm.io/gorm"
)

// GormJournalRepository implements journal.Repository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Append stores a new entry
func (r *GormJournalRepository) Append(ctx context.Context, entry *journal.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return shared.NewPersistenceError("append journal entry", err)
	}
	return nil
}

// FindByID finds an entry by ID, visible or not
func (r *GormJournalRepository) FindByID(ctx context.Context, id int64) (*journal.Entry, error) {
	var e journal.Entry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("journal entry", id)
		}
		return nil, shared.NewPersistenceError("get journal entry", err)
	}
	return &e, nil
}

// ListVisible returns visible entries ordered newest first unless the filter asks otherwise
func (r *GormJournalRepository) ListVisible(ctx context.Context, filter journal.ListFilter) ([]journal.Entry, error) {
	query := r.db.WithContext(ctx).Model(&journal.Entry{}).Where("visible = ?", true)
	if filter.ActionType != nil {
		query = query.Where("action_type = ?", *filter.ActionType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.Order == journal.OrderOldestFirst {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []journal.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, shared.NewPersistenceError("list journal entries", err)
	}
	return entries, nil
}

// MostRecentVisible returns the top of the undo stack, or nil when it is empty
func (r *GormJournalRepository) MostRecentVisible(ctx context.Context, exclude []journal.ActionType) (*journal.Entry, error) {
	query := excludeTypes(r.db.WithContext(ctx).Where("visible = ?", true), exclude)

	var e journal.Entry
	err := query.Order("created_at DESC").Order("id DESC").Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.NewPersistenceError("read top journal entry", err)
	}
	return &e, nil
}

// Delete permanently removes an entry
func (r *GormJournalRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&journal.Entry{}, id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete journal entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("journal entry", id)
	}
	return nil
}

// HideSince hides visible entries created at or after since
func (r *GormJournalRepository) HideSince(ctx context.Context, since time.Time, exclude []journal.ActionType) (int64, error) {
	query := r.db.WithContext(ctx).Model(&journal.Entry{}).
		Where("visible = ? AND created_at >= ?", true, since)
	result := excludeTypes(query, exclude).Update("visible", false)
	if result.Error != nil {
		return 0, shared.NewPersistenceError("hide journal entries", result.Error)
	}
	return result.RowsAffected, nil
}

// HideAll hides every visible entry
func (r *GormJournalRepository) HideAll(ctx context.Context, exclude []journal.ActionType) (int64, error) {
	query := r.db.WithContext(ctx).Model(&journal.Entry{}).Where("visible = ?", true)
	result := excludeTypes(query, exclude).Update("visible", false)
	if result.Error != nil {
		return 0, shared.NewPersistenceError("hide journal entries", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeHiddenBefore deletes hidden entries and undo markers older than the cutoff
func (r *GormJournalRepository) PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND (visible = ? OR action_type = ?)", cutoff, false, journal.ActionUndo).
		Delete(&journal.Entry{})
	if result.Error != nil {
		return 0, shared.NewPersistenceError("purge journal entries", result.Error)
	}
	return result.RowsAffected, nil
}

// excludeTypes adds a NOT IN clause; an empty list would match nothing, so it is skipped
func excludeTypes(query *gorm.DB, exclude []journal.ActionType) *gorm.DB {
	if len(exclude) == 0 {
		return query
	}
	return query.Where("action_type NOT IN ?", exclude)
}

var _ journal.Repository = (*GormJournalRepository)(nil)
