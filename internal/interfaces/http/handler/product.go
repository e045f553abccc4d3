package handler

import (
	"context"

	catalogapp "github.com/erp/warehouse/internal/application/catalog"
	inventoryapp "github.com/erp/warehouse/internal/application/inventory"
	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductService is the product command layer
type ProductService interface {
	Create(ctx context.Context, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalogapp.ProductResponse, error)
}

// StockMover applies direct movements to one product
type StockMover interface {
	ImportStock(ctx context.Context, productID uuid.UUID, req inventoryapp.StockMovementRequest) (*inventoryapp.StockMovementResponse, error)
	ExportStock(ctx context.Context, productID uuid.UUID, req inventoryapp.StockMovementRequest) (*inventoryapp.StockMovementResponse, error)
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService ProductService
	stock          StockMover
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService, stock StockMover) *ProductHandler {
	return &ProductHandler{productService: productService, stock: stock}
}

// Create godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Replace every field of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetByID godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category_id query string false "Only products of this category" format(uuid)
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}
	filter := req.ToFilter()

	var (
		products []catalogapp.ProductResponse
		err      error
	)
	if raw := c.Query("category_id"); raw != "" {
		categoryID, perr := uuid.Parse(raw)
		if perr != nil {
			h.BadRequest(c, "Invalid category_id format")
			return
		}
		products, err = h.productService.ListByCategory(c.Request.Context(), categoryID, filter)
	} else {
		products, err = h.productService.List(c.Request.Context(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, products, len(products), filter.Page, filter.PageSize)
}

// Import godoc
// @Summary      Receive stock for one product immediately
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body inventoryapp.StockMovementRequest true "Movement"
// @Router       /products/{id}/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	h.move(c, h.stock.ImportStock)
}

// Export godoc
// @Summary      Ship stock for one product immediately
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body inventoryapp.StockMovementRequest true "Movement"
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id}/export [post]
func (h *ProductHandler) Export(c *gin.Context) {
	h.move(c, h.stock.ExportStock)
}

func (h *ProductHandler) move(c *gin.Context, apply func(context.Context, uuid.UUID, inventoryapp.StockMovementRequest) (*inventoryapp.StockMovementResponse, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryapp.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := apply(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes mounts the product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/import", h.Import)
	g.POST("/:id/export", h.Export)
}
