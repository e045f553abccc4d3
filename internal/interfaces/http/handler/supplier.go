package handler

import (
	"context"

	partnerapp "github.com/erp/warehouse/internal/application/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplierService is the supplier command layer
type SupplierService interface {
	Create(ctx context.Context, req partnerapp.SupplierRequest) (*partnerapp.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req partnerapp.SupplierRequest) (*partnerapp.SupplierResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.SupplierResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]partnerapp.SupplierResponse, error)
}

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create godoc
// @Summary      Create a new supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.SupplierRequest true "Supplier creation request"
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update godoc
// @Summary      Replace every field of a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req partnerapp.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete godoc
// @Summary      Delete a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetByID godoc
// @Summary      Get a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	filter := req.ToFilter()
	suppliers, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, suppliers, len(suppliers), filter.Page, filter.PageSize)
}

// RegisterRoutes mounts the supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/suppliers")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
