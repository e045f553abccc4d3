package undo

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
)

// InverseHandler reverses the effect recorded by one journal entry
type InverseHandler func(ctx context.Context, entry *journal.Entry) error

// Stores are the repositories the inverse handlers write to
type Stores struct {
	Categories   catalog.CategoryRepository
	Products     catalog.ProductRepository
	Suppliers    partner.SupplierRepository
	Customers    partner.CustomerRepository
	Transactions inventory.TransactionRepository
}

// ErrCorruptSnapshot is returned when an entry cannot be reversed from what it recorded
var ErrCorruptSnapshot = errors.New("journal entry cannot be reversed from its snapshot")

// restorable is satisfied by pointers to entities that can re-apply a snapshot
type restorable[T any] interface {
	*T
	Restore(journal.Snapshot) error
	Reinstate(id uuid.UUID)
}

// handlersFor builds the dispatch table. Every action type except the undo marker has exactly
// one inverse.
func handlersFor(s Stores) map[journal.ActionType]InverseHandler {
	return map[journal.ActionType]InverseHandler{
		journal.ActionAddCategory:    hideCreated[catalog.Category](s.Categories),
		journal.ActionUpdateCategory: reapplySnapshot[catalog.Category](s.Categories),
		journal.ActionDeleteCategory: restoreDeleted[catalog.Category](s.Categories),

		journal.ActionAddProduct:    hideCreated[catalog.Product](s.Products),
		journal.ActionUpdateProduct: reapplySnapshot[catalog.Product](s.Products),
		journal.ActionDeleteProduct: restoreDeleted[catalog.Product](s.Products),

		journal.ActionAddSupplier:    hideCreated[partner.Supplier](s.Suppliers),
		journal.ActionUpdateSupplier: reapplySnapshot[partner.Supplier](s.Suppliers),
		journal.ActionDeleteSupplier: restoreDeleted[partner.Supplier](s.Suppliers),

		journal.ActionAddCustomer:    hideCreated[partner.Customer](s.Customers),
		journal.ActionUpdateCustomer: reapplySnapshot[partner.Customer](s.Customers),
		journal.ActionDeleteCustomer: restoreDeleted[partner.Customer](s.Customers),

		journal.ActionImportStock: restoreQuantity(s.Products),
		journal.ActionExportStock: restoreQuantity(s.Products),

		journal.ActionImportBatch: hidePendingBatch(s.Transactions),
		journal.ActionExportBatch: hidePendingBatch(s.Transactions),

		journal.ActionUpdateTransaction:     restorePendingEdit(s.Transactions),
		journal.ActionAddTransactionLine:    restorePendingEdit(s.Transactions),
		journal.ActionUpdateTransactionLine: restorePendingEdit(s.Transactions),
		journal.ActionDeleteTransactionLine: restorePendingEdit(s.Transactions),

		journal.ActionApproveTransaction: irreversible("approved transactions cannot be undone"),
		journal.ActionCancelTransaction:  irreversible("cancelled transactions cannot be undone"),
	}
}

func targetOf(entry *journal.Entry) (uuid.UUID, error) {
	if entry.TargetID == nil || *entry.TargetID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: entry %d has no target", ErrCorruptSnapshot, entry.ID)
	}
	return *entry.TargetID, nil
}

func corrupt(entry *journal.Entry, err error) error {
	return fmt.Errorf("%w: entry %d (%s): %v", ErrCorruptSnapshot, entry.ID, entry.ActionType, err)
}

// hideCreated soft-deletes the row an ADD entry created
func hideCreated[T any](store shared.EntityStore[T]) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		return store.SetVisible(ctx, id, false)
	}
}

// reapplySnapshot writes the captured fields back onto the row an UPDATE entry changed
func reapplySnapshot[T any, P restorable[T]](store shared.EntityStore[T]) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		current, err := store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := P(current).Restore(entry.Snapshot()); err != nil {
			return corrupt(entry, err)
		}
		return store.Update(ctx, current)
	}
}

// restoreDeleted brings back the row a DELETE entry hid. A row that is gone entirely is
// created again under its original ID.
func restoreDeleted[T any, P restorable[T]](store shared.EntityStore[T]) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		current, err := store.GetByID(ctx, id)
		if shared.IsNotFound(err) {
			var fresh T
			p := P(&fresh)
			p.Reinstate(id)
			if err := p.Restore(entry.Snapshot()); err != nil {
				return corrupt(entry, err)
			}
			return store.Create(ctx, &fresh)
		}
		if err != nil {
			return err
		}
		if err := P(current).Restore(entry.Snapshot()); err != nil {
			return corrupt(entry, err)
		}
		if err := store.Update(ctx, current); err != nil {
			return err
		}
		return store.SetVisible(ctx, id, true)
	}
}

// restoreQuantity puts back the stock level captured before a direct movement
func restoreQuantity(products catalog.ProductRepository) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		qty, err := entry.Snapshot().Int(catalog.FieldQuantity)
		if err != nil {
			return corrupt(entry, err)
		}
		return products.SetQuantity(ctx, id, qty)
	}
}

// hidePendingBatch withdraws a transaction that has not been decided yet
func hidePendingBatch(transactions inventory.TransactionRepository) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		tx, err := transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !tx.IsPending() {
			return blocked(shared.NewStateConflictError("transaction is no longer pending and cannot be undone").
				With("transaction_id", id).
				With("status", tx.Status))
		}
		return transactions.SetVisible(ctx, id, false)
	}
}

// restorePendingEdit puts back the kind, note and lines a transaction had before an edit. Once the
// transaction is decided its contents are final.
func restorePendingEdit(transactions inventory.TransactionRepository) InverseHandler {
	return func(ctx context.Context, entry *journal.Entry) error {
		id, err := targetOf(entry)
		if err != nil {
			return err
		}
		tx, err := transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !tx.IsPending() {
			return blocked(shared.NewStateConflictError("transaction is no longer pending and its edits cannot be undone").
				With("transaction_id", id).
				With("status", tx.Status))
		}
		if err := tx.Restore(entry.Snapshot()); err != nil {
			return corrupt(entry, err)
		}
		return transactions.UpdatePending(ctx, tx)
	}
}

func irreversible(message string) InverseHandler {
	return func(_ context.Context, entry *journal.Entry) error {
		err := shared.NewStateConflictError(message).With("entry_id", entry.ID)
		if entry.TargetID != nil {
			err = err.With("transaction_id", *entry.TargetID)
		}
		return blocked(err)
	}
}
