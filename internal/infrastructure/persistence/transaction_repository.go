package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements inventory.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// Create persists the header and its lines in one database transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *inventory.StockTransaction) error {
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		lines := tx.Lines
		if err := db.Omit("Lines").Create(tx).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].TransactionID = tx.ID
		}
		if len(lines) > 0 {
			if err := db.Create(&lines).Error; err != nil {
				return err
			}
		}
		tx.Lines = lines
		return nil
	})
	if err != nil {
		return shared.NewPersistenceError("create stock transaction", err)
	}
	return nil
}

// GetByID loads a transaction with its lines regardless of visibility
func (r *GormTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	var tx inventory.StockTransaction
	err := r.db.WithContext(ctx).Preload("Lines", preloadLines).Where("id = ?", id).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("stock transaction", id)
		}
		return nil, shared.NewPersistenceError("get stock transaction", err)
	}
	return &tx, nil
}

// UpdateStatus writes the lifecycle columns guarded by the expected current status, so two
// concurrent approvals of the same transaction cannot both succeed
func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, tx *inventory.StockTransaction, from inventory.TransactionStatus) error {
	result := r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
		Where("id = ? AND status = ?", tx.ID, from).
		Updates(map[string]any{
			"status":       tx.Status,
			"approved_at":  tx.ApprovedAt,
			"cancelled_at": tx.CancelledAt,
			"updated_at":   tx.UpdatedAt,
		})
	if result.Error != nil {
		return shared.NewPersistenceError("update stock transaction status", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var current inventory.StockTransaction
	err := r.db.WithContext(ctx).Select("id", "status").Where("id = ?", tx.ID).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError("stock transaction", tx.ID)
	}
	if err != nil {
		return shared.NewPersistenceError("update stock transaction status", err)
	}
	return shared.NewStateConflictError("stock transaction status changed concurrently").
		With("transaction_id", tx.ID).
		With("expected", from).
		With("actual", current.Status)
}

// UpdatePending replaces the header fields and every line in one database transaction. The
// header write is guarded by the PENDING status so an edit cannot land on a decided transaction.
func (r *GormTransactionRepository) UpdatePending(ctx context.Context, tx *inventory.StockTransaction) error {
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		result := db.Model(&inventory.StockTransaction{}).
			Where("id = ? AND status = ?", tx.ID, inventory.StatusPending).
			Updates(map[string]any{
				"kind":       tx.Kind,
				"note":       tx.Note,
				"updated_at": tx.UpdatedAt,
			})
		if result.Error != nil {
			return shared.NewPersistenceError("update stock transaction", result.Error)
		}
		if result.RowsAffected == 0 {
			var current inventory.StockTransaction
			err := db.Select("id", "status").Where("id = ?", tx.ID).First(&current).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError("stock transaction", tx.ID)
			}
			if err != nil {
				return shared.NewPersistenceError("update stock transaction", err)
			}
			return shared.NewStateConflictError("cannot edit a transaction that is not pending").
				With("transaction_id", tx.ID).
				With("status", current.Status)
		}

		if err := db.Where("transaction_id = ?", tx.ID).Delete(&inventory.TransactionLine{}).Error; err != nil {
			return shared.NewPersistenceError("replace stock transaction lines", err)
		}
		lines := tx.Lines
		for i := range lines {
			lines[i].ID = 0
			lines[i].TransactionID = tx.ID
		}
		if len(lines) > 0 {
			if err := db.Create(&lines).Error; err != nil {
				return shared.NewPersistenceError("replace stock transaction lines", err)
			}
		}
		tx.Lines = lines
		return nil
	})
	return err
}

// SetVisible hides or restores a transaction
func (r *GormTransactionRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	result := r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
		Where("id = ?", id).
		Update("visible", visible)
	if result.Error != nil {
		return shared.NewPersistenceError("set stock transaction visibility", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("stock transaction", id)
	}
	return nil
}

// List returns transactions with their lines
func (r *GormTransactionRepository) List(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.StockTransaction, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockTransaction{})
	if !filter.IncludeHidden {
		query = query.Where("visible = ?", true)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(note) LIKE ? OR LOWER(created_by) LIKE ?)", like, like)
	}
	query = applyPaging(query, filter.Filter, TransactionSortFields)

	var out []inventory.StockTransaction
	if err := query.Preload("Lines", preloadLines).Find(&out).Error; err != nil {
		return nil, shared.NewPersistenceError("list stock transactions", err)
	}
	return out, nil
}

var _ inventory.TransactionRepository = (*GormTransactionRepository)(nil)
