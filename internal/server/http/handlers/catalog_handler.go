package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/server/http/dto"
)

// TableHandler exposes dining tables.
type TableHandler struct {
	facade TableFacade
}

// NewTableHandler constructs TableHandler.
func NewTableHandler(facade TableFacade) *TableHandler {
	return &TableHandler{facade: facade}
}

// Create handles POST /api/tables.
func (h *TableHandler) Create(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	table, err := h.facade.CreateTable(c.Request.Context(), req.Number, req.Capacity, req.Location)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTableResponse(*table))
}

// Get handles GET /api/tables/:id.
func (h *TableHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	table, err := h.facade.Table(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toTableResponse(*table))
}

// List handles GET /api/tables.
func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.facade.Tables(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	resp := make([]dto.TableResponse, 0, len(tables))
	for _, t := range tables {
		resp = append(resp, toTableResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// ProductHandler exposes the menu.
type ProductHandler struct {
	facade ProductFacade
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade ProductFacade) *ProductHandler {
	return &ProductHandler{facade: facade}
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	available := req.Available == nil || *req.Available
	product, err := h.facade.CreateProduct(c.Request.Context(), req.Name, req.Category, req.Price, available)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*product))
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.facade.Products(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// SetAvailability handles PATCH /api/products/:id/availability.
func (h *ProductHandler) SetAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		badRequest(c, "available flag is required")
		return
	}
	product, err := h.facade.SetProductAvailability(c.Request.Context(), id, *req.Available)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}
