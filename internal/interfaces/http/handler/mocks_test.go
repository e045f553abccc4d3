package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/warehouse/internal/application/catalog"
	inventoryapp "github.com/erp/warehouse/internal/application/inventory"
	appsession "github.com/erp/warehouse/internal/application/session"
	"github.com/erp/warehouse/internal/application/undo"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/session"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/erp/warehouse/internal/interfaces/http/dto"
	"github.com/erp/warehouse/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// newTestEngine mounts h under /api/v1 the way the server does
func newTestEngine(h routeRegistrar) *gin.Engine {
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1", middleware.RequestWarnings()))
	return engine
}

// doJSON performs a request and decodes the envelope
func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Status() session.Status {
	return m.Called().Get(0).(session.Status)
}

func (m *MockSessionService) Commit(ctx context.Context) session.Status {
	return m.Called(ctx).Get(0).(session.Status)
}

func (m *MockSessionService) Rollback(ctx context.Context) (*appsession.RollbackResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsession.RollbackResult), args.Error(1)
}

func (m *MockSessionService) Reset(ctx context.Context) session.Status {
	return m.Called(ctx).Get(0).(session.Status)
}

func (m *MockSessionService) ClearUndoStack(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUndoer is a mock implementation of Undoer
type MockUndoer struct {
	mock.Mock
}

func (m *MockUndoer) Undo(ctx context.Context) (*undo.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*undo.Result), args.Error(1)
}

// MockJournalReader is a mock implementation of JournalReader
type MockJournalReader struct {
	mock.Mock
}

func (m *MockJournalReader) ListVisible(ctx context.Context, filter journal.ListFilter) ([]journal.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]journal.Entry), args.Error(1)
}

// MockCategoryService is a mock implementation of CategoryService
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context, filter shared.Filter) ([]catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.CategoryResponse), args.Error(1)
}

// MockProductService is a mock implementation of ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalogapp.ProductResponse, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ProductResponse), args.Error(1)
}

// MockStockMover is a mock implementation of StockMover
type MockStockMover struct {
	mock.Mock
}

func (m *MockStockMover) ImportStock(ctx context.Context, productID uuid.UUID, req inventoryapp.StockMovementRequest) (*inventoryapp.StockMovementResponse, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockMovementResponse), args.Error(1)
}

func (m *MockStockMover) ExportStock(ctx context.Context, productID uuid.UUID, req inventoryapp.StockMovementRequest) (*inventoryapp.StockMovementResponse, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockMovementResponse), args.Error(1)
}

// MockTransactionService is a mock implementation of TransactionService
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateBatch(ctx context.Context, req inventoryapp.CreateBatchRequest) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) Approve(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) Cancel(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateTransactionRequest) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) AddLine(ctx context.Context, id uuid.UUID, req inventoryapp.BatchLineRequest) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) UpdateLine(ctx context.Context, id, productID uuid.UUID, req inventoryapp.UpdateLineRequest) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) RemoveLine(ctx context.Context, id, productID uuid.UUID) (*inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, id, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, filter inventoryapp.TransactionListFilter) ([]inventoryapp.TransactionResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.TransactionResponse), args.Error(1)
}
