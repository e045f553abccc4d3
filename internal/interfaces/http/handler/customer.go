package handler

import (
	"context"

	partnerapp "github.com/erp/warehouse/internal/application/partner"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerService is the customer command layer
type CustomerService interface {
	Create(ctx context.Context, req partnerapp.CustomerRequest) (*partnerapp.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req partnerapp.CustomerRequest) (*partnerapp.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.CustomerResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]partnerapp.CustomerResponse, error)
}

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create godoc
// @Summary      Create a new customer
// @Tags         customers
// @Param        request body partnerapp.CustomerRequest true "Customer creation request"
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Update godoc
// @Summary      Replace every field of a customer
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req partnerapp.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete a customer
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetByID godoc
// @Summary      Get a customer
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	filter := req.ToFilter()
	customers, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, customers, len(customers), filter.Page, filter.PageSize)
}

// RegisterRoutes mounts the customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customers")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
