package handler

import (
	"context"
	"time"

	inventoryapp "github.com/erp/warehouse/internal/application/inventory"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionService is the approval workflow
type TransactionService interface {
	CreateBatch(ctx context.Context, req inventoryapp.CreateBatchRequest) (*inventoryapp.TransactionResponse, error)
	Approve(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.TransactionResponse, error)
	List(ctx context.Context, filter inventoryapp.TransactionListFilter) ([]inventoryapp.TransactionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateTransactionRequest) (*inventoryapp.TransactionResponse, error)
	AddLine(ctx context.Context, id uuid.UUID, req inventoryapp.BatchLineRequest) (*inventoryapp.TransactionResponse, error)
	UpdateLine(ctx context.Context, id, productID uuid.UUID, req inventoryapp.UpdateLineRequest) (*inventoryapp.TransactionResponse, error)
	RemoveLine(ctx context.Context, id, productID uuid.UUID) (*inventoryapp.TransactionResponse, error)
}

// TransactionHandler handles stock transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionQuery holds the transaction-specific listing parameters
type TransactionQuery struct {
	Kind   string     `form:"kind" binding:"omitempty,oneof=IMPORT EXPORT"`
	Status string     `form:"status" binding:"omitempty,oneof=PENDING APPROVED CANCELLED"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// lineURI holds the path of a single transaction line
type lineURI struct {
	ID        string `uri:"id" binding:"required,uuid"`
	ProductID string `uri:"productId" binding:"required,uuid"`
}

// Create godoc
// @Summary      Create a pending import or export batch
// @Description  Stock is not touched until the transaction is approved.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateBatchRequest true "Batch"
// @Success      201 {object} dto.Response{data=inventoryapp.TransactionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	tx, err := h.transactionService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// Approve godoc
// @Summary      Approve a pending transaction and apply its stock changes
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/approve [post]
func (h *TransactionHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tx, err := h.transactionService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Cancel godoc
// @Summary      Cancel a pending transaction
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tx, err := h.transactionService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// GetByID godoc
// @Summary      Get a transaction with its lines
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tx, err := h.transactionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List godoc
// @Summary      List transactions
// @Tags         transactions
// @Param        kind query string false "IMPORT or EXPORT"
// @Param        status query string false "PENDING, APPROVED or CANCELLED"
// @Param        from query string false "RFC 3339 lower bound on creation time"
// @Param        to query string false "RFC 3339 upper bound on creation time"
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	var q TransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := inventoryapp.TransactionListFilter{Filter: req.ToFilter(), From: q.From, To: q.To}
	if q.Kind != "" {
		kind := inventory.TransactionKind(q.Kind)
		filter.Kind = &kind
	}
	if q.Status != "" {
		status := inventory.TransactionStatus(q.Status)
		filter.Status = &status
	}

	txs, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, txs, len(txs), filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Change the kind and note of a pending transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body inventoryapp.UpdateTransactionRequest true "Header"
// @Success      200 {object} dto.Response{data=inventoryapp.TransactionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryapp.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	tx, err := h.transactionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// AddLine godoc
// @Summary      Add a product line to a pending transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body inventoryapp.BatchLineRequest true "Line"
// @Success      201 {object} dto.Response{data=inventoryapp.TransactionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/lines [post]
func (h *TransactionHandler) AddLine(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryapp.BatchLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	tx, err := h.transactionService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// UpdateLine godoc
// @Summary      Change the quantity or prices of a pending transaction line
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Param        request body inventoryapp.UpdateLineRequest true "Line"
// @Success      200 {object} dto.Response{data=inventoryapp.TransactionResponse}
// @Router       /transactions/{id}/lines/{productId} [put]
func (h *TransactionHandler) UpdateLine(c *gin.Context) {
	id, productID, ok := h.linePath(c)
	if !ok {
		return
	}
	var req inventoryapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	tx, err := h.transactionService.UpdateLine(c.Request.Context(), id, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// RemoveLine godoc
// @Summary      Remove a line from a pending transaction
// @Description  The last line of a transaction cannot be removed.
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.TransactionResponse}
// @Router       /transactions/{id}/lines/{productId} [delete]
func (h *TransactionHandler) RemoveLine(c *gin.Context) {
	id, productID, ok := h.linePath(c)
	if !ok {
		return
	}
	tx, err := h.transactionService.RemoveLine(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

func (h *TransactionHandler) linePath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var uri lineURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return uuid.MustParse(uri.ID), uuid.MustParse(uri.ProductID), true
}

// RegisterRoutes mounts the transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/transactions")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.POST("/:id/lines", h.AddLine)
	g.PUT("/:id/lines/:productId", h.UpdateLine)
	g.DELETE("/:id/lines/:productId", h.RemoveLine)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/cancel", h.Cancel)
}
