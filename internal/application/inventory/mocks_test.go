package inventory

import (
	"context"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	return m.Called(ctx, id, visible).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountVisibleByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

// MockTransactionRepository is a mock implementation of inventory.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *inventory.StockTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockTransaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx *inventory.StockTransaction, from inventory.TransactionStatus) error {
	return m.Called(ctx, tx, from).Error(0)
}

func (m *MockTransactionRepository) UpdatePending(ctx context.Context, tx *inventory.StockTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	return m.Called(ctx, id, visible).Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.StockTransaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockTransaction), args.Error(1)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Create(ctx context.Context, s *partner.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSupplierRepository) Update(ctx context.Context, s *partner.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSupplierRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	return m.Called(ctx, id, visible).Error(0)
}

func (m *MockSupplierRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

// MockRecorder is a mock implementation of appjournal.MutationRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, rec appjournal.Record) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

// MockLocker is a mock implementation of ProductLocker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Acquire(ctx context.Context, productIDs []uuid.UUID) (func(), error) {
	args := m.Called(ctx, productIDs)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}
