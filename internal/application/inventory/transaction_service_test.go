package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceMocks struct {
	products     *MockProductRepository
	transactions *MockTransactionRepository
	suppliers    *MockSupplierRepository
	recorder     *MockRecorder
	locker       *MockLocker
}

type approvalMetrics struct {
	outcomes []string
}

func (m *approvalMetrics) RecordTransaction(context.Context, string, string) {}

func (m *approvalMetrics) RecordApprovalDuration(_ context.Context, _ time.Duration, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func newTestService(opts ...Option) (*TransactionService, *serviceMocks) {
	m := &serviceMocks{
		products:     new(MockProductRepository),
		transactions: new(MockTransactionRepository),
		suppliers:    new(MockSupplierRepository),
		recorder:     new(MockRecorder),
		locker:       new(MockLocker),
	}
	svc := NewTransactionService(TransactionServiceDeps{
		Products:     m.products,
		Transactions: m.transactions,
		Suppliers:    m.suppliers,
		Scope:        NewNoOpTransactionScope(m.products, m.transactions),
		Locker:       m.locker,
		Recorder:     m.recorder,
		Logger:       zap.NewNop(),
	}, opts...)
	return svc, m
}

func newProduct(t *testing.T, name string, qty int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductFields{
		Name:       name,
		CategoryID: uuid.New(),
		Price:      decimal.NewFromInt(5),
		Quantity:   qty,
	})
	require.NoError(t, err)
	return p
}

func newPendingTx(t *testing.T, kind inventory.TransactionKind, p *catalog.Product, qty int) *inventory.StockTransaction {
	t.Helper()
	line, err := inventory.NewTransactionLine(p.ID, p.Name, qty, p.Price, decimal.Zero)
	require.NoError(t, err)
	tx, err := inventory.NewStockTransaction(kind, "clerk", "", nil, []inventory.TransactionLine{line})
	require.NoError(t, err)
	return tx
}

func TestCreateBatch_DuplicateProductsRejected(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	_, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindImport,
		CreatedBy: "clerk",
		Lines: []BatchLineRequest{
			{ProductID: id, Quantity: 1},
			{ProductID: id, Quantity: 2},
		},
	})

	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestCreateBatch_UnknownProduct(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{id}).Return(map[uuid.UUID]*catalog.Product{}, nil)

	_, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindImport,
		CreatedBy: "clerk",
		Lines:     []BatchLineRequest{{ProductID: id, Quantity: 1}},
	})

	assert.True(t, shared.IsNotFound(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBatch_ExportBeyondStock(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 3)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)

	_, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindExport,
		CreatedBy: "clerk",
		Lines:     []BatchLineRequest{{ProductID: p.ID, Quantity: 4}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 4, de.Context["required"])
	assert.Equal(t, 3, de.Context["available"])
}

func TestCreateBatch_UnknownSupplier(t *testing.T) {
	svc, m := newTestService()
	supplierID := uuid.New()
	m.suppliers.On("GetByID", mock.Anything, supplierID).Return(nil, shared.NewNotFoundError("supplier", supplierID))

	_, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindImport,
		CreatedBy: "clerk",
		PartnerID: &supplierID,
		Lines:     []BatchLineRequest{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.True(t, shared.IsNotFound(err))
}

func TestCreateBatch_PersistsPendingAndJournals(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 3)
	supplier, err := partner.NewSupplier("Acme", "", partner.Contact{})
	require.NoError(t, err)

	m.suppliers.On("GetByID", mock.Anything, supplier.ID).Return(supplier, nil)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)
	m.transactions.On("Create", mock.Anything, mock.MatchedBy(func(tx *inventory.StockTransaction) bool {
		return tx.Status == inventory.StatusPending && len(tx.Lines) == 1 && tx.Lines[0].UnitPrice.Equal(p.Price)
	})).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionImportBatch && rec.TargetID != nil
	})).Return(int64(1), nil)

	resp, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindImport,
		CreatedBy: "clerk",
		PartnerID: &supplier.ID,
		Lines:     []BatchLineRequest{{ProductID: p.ID, Quantity: 10, DiscountRate: decimal.NewFromInt(10)}},
	})

	require.NoError(t, err)
	assert.Equal(t, inventory.StatusPending, resp.Status)
	assert.True(t, resp.TotalValue.Equal(decimal.NewFromInt(45)))
	m.products.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
	m.recorder.AssertExpectations(t)
}

func TestApprove_AppliesDeltasAndJournals(t *testing.T) {
	metrics := &approvalMetrics{}
	svc, m := newTestService(WithMetrics(metrics))
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindExport, p, 4)

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, []uuid.UUID{p.ID}).Return(nil)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)
	m.products.On("AdjustQuantity", mock.Anything, p.ID, -4).Return(nil)
	m.transactions.On("UpdateStatus", mock.Anything, tx, inventory.StatusPending).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionApproveTransaction && *rec.TargetID == tx.ID
	})).Return(int64(2), nil)

	resp, err := svc.Approve(context.Background(), tx.ID)

	require.NoError(t, err)
	assert.Equal(t, inventory.StatusApproved, resp.Status)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, 1, m.locker.released)
	assert.Equal(t, []string{OutcomeApproved}, metrics.outcomes)
	m.products.AssertExpectations(t)
	m.transactions.AssertExpectations(t)
}

func TestApprove_InsufficientStockLeavesPending(t *testing.T) {
	metrics := &approvalMetrics{}
	svc, m := newTestService(WithMetrics(metrics))
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindExport, p, 8)
	p.Quantity = 5

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, mock.Anything).Return(nil)
	m.products.On("GetByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)

	_, err := svc.Approve(context.Background(), tx.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, p.ID, de.Context["product_id"])
	assert.Equal(t, 8, de.Context["required"])
	assert.Equal(t, 5, de.Context["available"])
	assert.Equal(t, inventory.StatusPending, tx.Status)
	assert.Equal(t, 1, m.locker.released)
	assert.Equal(t, []string{OutcomeRejected}, metrics.outcomes)
	m.products.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
	m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestApprove_NotPending(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindImport, p, 1)
	require.NoError(t, tx.Cancel())
	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

	_, err := svc.Approve(context.Background(), tx.ID)

	assert.True(t, shared.IsStateConflict(err))
	m.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestApprove_LockBusy(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindImport, p, 1)
	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, mock.Anything).Return(shared.NewStateConflictError("product is locked by another approval"))

	_, err := svc.Approve(context.Background(), tx.ID)

	assert.True(t, shared.IsStateConflict(err))
	m.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindImport, p, 1)
	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.transactions.On("UpdateStatus", mock.Anything, tx, inventory.StatusPending).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionCancelTransaction
	})).Return(int64(1), nil)

	resp, err := svc.Cancel(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusCancelled, resp.Status)
	m.products.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)

	_, err = svc.Cancel(context.Background(), tx.ID)
	assert.True(t, shared.IsStateConflict(err))
}

func TestExportStock_JournalsPreviousQuantity(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	m.locker.On("Acquire", mock.Anything, []uuid.UUID{p.ID}).Return(nil)
	m.products.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	m.products.On("AdjustQuantity", mock.Anything, p.ID, -4).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionExportStock && rec.Snapshot[catalog.FieldQuantity] == 10
	})).Return(int64(1), nil)

	resp, err := svc.ExportStock(context.Background(), p.ID, StockMovementRequest{Quantity: 4})

	require.NoError(t, err)
	assert.Equal(t, 10, resp.PreviousQuantity)
	assert.Equal(t, 6, resp.Quantity)
	m.recorder.AssertExpectations(t)
}

func TestExportStock_InsufficientStockNotJournaled(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 2)
	m.locker.On("Acquire", mock.Anything, mock.Anything).Return(nil)
	m.products.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	m.products.On("AdjustQuantity", mock.Anything, p.ID, -5).
		Return(shared.NewInsufficientStockError(p.ID, p.Name, 5, 2))

	_, err := svc.ExportStock(context.Background(), p.ID, StockMovementRequest{Quantity: 5})

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestList_RejectsUnknownKind(t *testing.T) {
	svc, m := newTestService()
	kind := inventory.TransactionKind("TRANSFER")

	_, err := svc.List(context.Background(), TransactionListFilter{Kind: &kind})

	assert.True(t, shared.IsValidation(err))
	m.transactions.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestApprove_PersistenceFailureIsFailedOutcome(t *testing.T) {
	metrics := &approvalMetrics{}
	svc, m := newTestService(WithMetrics(metrics))
	id := uuid.New()
	m.transactions.On("GetByID", mock.Anything, id).Return(nil, shared.NewPersistenceError("get stock transaction", errors.New("closed")))

	_, err := svc.Approve(context.Background(), id)

	assert.True(t, shared.IsPersistence(err))
	assert.Equal(t, []string{OutcomeFailed}, metrics.outcomes)
}

func TestCreateBatch_UnitPriceDefaultsOnlyWhenOmitted(t *testing.T) {
	svc, m := newTestService()
	priced := newProduct(t, "Bolt", 3)
	free := newProduct(t, "Sample", 3)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{priced.ID, free.ID}).
		Return(map[uuid.UUID]*catalog.Product{priced.ID: priced, free.ID: free}, nil)
	m.transactions.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.Anything).Return(int64(1), nil)

	zero := decimal.Zero
	resp, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		Kind:      inventory.KindImport,
		CreatedBy: "clerk",
		Lines: []BatchLineRequest{
			{ProductID: priced.ID, Quantity: 2},
			{ProductID: free.ID, Quantity: 2, UnitPrice: &zero},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(priced.Price))
	assert.True(t, resp.Lines[1].UnitPrice.IsZero())
	assert.True(t, resp.TotalValue.Equal(decimal.NewFromInt(10)))
}

func TestUpdate_RevisesHeaderAndJournalsPreviousState(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindImport, p, 4)

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, []uuid.UUID{p.ID}).Return(nil)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)
	m.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionUpdateTransaction &&
			rec.Snapshot[inventory.FieldKind] == "IMPORT" &&
			rec.Snapshot[inventory.FieldNote] == ""
	})).Return(int64(3), nil)

	resp, err := svc.Update(context.Background(), tx.ID, UpdateTransactionRequest{Kind: inventory.KindExport, Note: "ship to store"})

	require.NoError(t, err)
	assert.Equal(t, inventory.KindExport, resp.Kind)
	assert.Equal(t, "ship to store", resp.Note)
	assert.Equal(t, 1, m.locker.released)
	m.recorder.AssertExpectations(t)
}

func TestUpdate_ExportBeyondStockRejected(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 2)
	tx := newPendingTx(t, inventory.KindImport, p, 4)

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, mock.Anything).Return(nil)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)

	_, err := svc.Update(context.Background(), tx.ID, UpdateTransactionRequest{Kind: inventory.KindExport})

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	m.transactions.AssertNotCalled(t, "UpdatePending", mock.Anything, mock.Anything)
	m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestAddLine(t *testing.T) {
	p := newProduct(t, "Bolt", 10)
	extra := newProduct(t, "Nut", 10)

	t.Run("snapshot holds the lines before the edit", func(t *testing.T) {
		svc, m := newTestService()
		tx := newPendingTx(t, inventory.KindImport, p, 4)
		m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
		m.locker.On("Acquire", mock.Anything, []uuid.UUID{p.ID, extra.ID}).Return(nil)
		m.products.On("GetByID", mock.Anything, extra.ID).Return(extra, nil)
		m.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
		m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
			lines, err := rec.Snapshot.Records(inventory.FieldLines)
			return err == nil && len(lines) == 1 && rec.ActionType == journal.ActionAddTransactionLine
		})).Return(int64(4), nil)

		resp, err := svc.AddLine(context.Background(), tx.ID, BatchLineRequest{ProductID: extra.ID, Quantity: 3})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, "Nut", resp.Lines[1].ProductName)
		assert.Equal(t, 2, resp.Lines[1].LineNo)
		assert.True(t, resp.Lines[1].UnitPrice.Equal(extra.Price))
		m.recorder.AssertExpectations(t)
	})

	t.Run("duplicate product", func(t *testing.T) {
		svc, m := newTestService()
		tx := newPendingTx(t, inventory.KindImport, p, 4)
		m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
		m.locker.On("Acquire", mock.Anything, mock.Anything).Return(nil)
		m.products.On("GetByID", mock.Anything, p.ID).Return(p, nil)

		_, err := svc.AddLine(context.Background(), tx.ID, BatchLineRequest{ProductID: p.ID, Quantity: 1})

		assert.True(t, shared.IsValidation(err))
		m.transactions.AssertNotCalled(t, "UpdatePending", mock.Anything, mock.Anything)
	})

	t.Run("approved transaction", func(t *testing.T) {
		svc, m := newTestService()
		tx := newPendingTx(t, inventory.KindImport, p, 4)
		require.NoError(t, tx.Approve())
		m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

		_, err := svc.AddLine(context.Background(), tx.ID, BatchLineRequest{ProductID: extra.ID, Quantity: 1})

		assert.True(t, shared.IsStateConflict(err))
		m.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
		m.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestUpdateLine_KeepsOmittedPrices(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	tx := newPendingTx(t, inventory.KindExport, p, 4)
	require.NoError(t, tx.UpdateLine(p.ID, 4, decimal.NewFromInt(7), decimal.NewFromInt(10)))

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, []uuid.UUID{p.ID}).Return(nil)
	m.products.On("GetByIDs", mock.Anything, []uuid.UUID{p.ID}).Return(map[uuid.UUID]*catalog.Product{p.ID: p}, nil)
	m.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.Anything).Return(int64(5), nil)

	resp, err := svc.UpdateLine(context.Background(), tx.ID, p.ID, UpdateLineRequest{Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Lines[0].Quantity)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(decimal.NewFromInt(7)))
	assert.True(t, resp.Lines[0].DiscountRate.Equal(decimal.NewFromInt(10)))

	_, err = svc.UpdateLine(context.Background(), tx.ID, p.ID, UpdateLineRequest{Quantity: 11})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = svc.UpdateLine(context.Background(), tx.ID, uuid.New(), UpdateLineRequest{Quantity: 1})
	assert.True(t, shared.IsNotFound(err))
	m.transactions.AssertNumberOfCalls(t, "UpdatePending", 1)
}

func TestRemoveLine(t *testing.T) {
	svc, m := newTestService()
	p := newProduct(t, "Bolt", 10)
	extra := newProduct(t, "Nut", 10)
	tx := newPendingTx(t, inventory.KindImport, p, 4)
	line, err := inventory.NewTransactionLine(extra.ID, extra.Name, 2, extra.Price, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, tx.AddLine(line))

	m.transactions.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	m.locker.On("Acquire", mock.Anything, mock.Anything).Return(nil)
	m.transactions.On("UpdatePending", mock.Anything, tx).Return(nil)
	m.recorder.On("Record", mock.Anything, mock.MatchedBy(func(rec appjournal.Record) bool {
		return rec.ActionType == journal.ActionDeleteTransactionLine
	})).Return(int64(6), nil)

	resp, err := svc.RemoveLine(context.Background(), tx.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, extra.ID, resp.Lines[0].ProductID)

	_, err = svc.RemoveLine(context.Background(), tx.ID, extra.ID)
	assert.True(t, shared.IsValidation(err))
	m.transactions.AssertNumberOfCalls(t, "UpdatePending", 1)
}

func TestList_DateRange(t *testing.T) {
	svc, m := newTestService()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := svc.List(context.Background(), TransactionListFilter{From: &to, To: &from})
	assert.True(t, shared.IsValidation(err))
	m.transactions.AssertNotCalled(t, "List", mock.Anything, mock.Anything)

	m.transactions.On("List", mock.Anything, mock.MatchedBy(func(f inventory.TransactionFilter) bool {
		return f.From.Equal(from) && f.To.Equal(to) && !f.IncludeHidden
	})).Return([]inventory.StockTransaction{}, nil)

	list, err := svc.List(context.Background(), TransactionListFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, list)
	m.transactions.AssertExpectations(t)
}
