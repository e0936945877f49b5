package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/ledger"
)

// StockReportRequest narrows the stock-on-hand report
type StockReportRequest struct {
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	SKU         string `form:"sku" binding:"omitempty,max=64"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// StockHandler handles stock and movement history API endpoints
type StockHandler struct {
	BaseHandler
	queryService *appledger.QueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(queryService *appledger.QueryService) *StockHandler {
	return &StockHandler{queryService: queryService}
}

// RegisterRoutes wires stock query endpoints into the API group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id/stock", h.StockByProduct)
	rg.GET("/stock/history/:sku", h.HistoryBySKU)
	rg.GET("/stock/report", h.Report)
}

// Report pages the stock-on-hand report across warehouses
func (h *StockHandler) Report(c *gin.Context) {
	var req StockReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := ledger.StockReportFilter{
		SKU:      req.SKU,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.WarehouseID != "" {
		id, err := uuid.Parse(req.WarehouseID)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		filter.WarehouseID = &id
	}

	page, err := h.queryService.InventoryReport(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// StockByProduct returns a product's per-location stock rows
func (h *StockHandler) StockByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	rows, err := h.queryService.StockByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rows)
}

// HistoryBySKU returns the movement lines that touched a product, newest first
func (h *StockHandler) HistoryBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	limit := parseLimit(c, 100)

	details, err := h.queryService.MovementHistoryBySKU(c.Request.Context(), sku, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, details)
}
