package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appwarehouse "github.com/warehousepro/backend/internal/application/warehouse"
	"github.com/warehousepro/backend/internal/interfaces/http/middleware"
)

// WarehouseHandler handles warehouse layout API endpoints
type WarehouseHandler struct {
	BaseHandler
	topologyService *appwarehouse.TopologyService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(topologyService *appwarehouse.TopologyService) *WarehouseHandler {
	return &WarehouseHandler{topologyService: topologyService}
}

// CreateWarehouseRequest is the request body for registering a warehouse
type CreateWarehouseRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address" binding:"max=512"`
}

// CreateLocationRequest is the request body for adding a storage location
type CreateLocationRequest struct {
	Code  string `json:"code" binding:"required,location_code"`
	Zone  string `json:"zone" binding:"max=64"`
	Shelf string `json:"shelf" binding:"max=64"`
	Level string `json:"level" binding:"max=64"`
}

// RegisterRoutes wires warehouse layout endpoints into the API group
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/warehouses", h.Create)
	rg.GET("/warehouses", h.List)
	rg.POST("/warehouses/:id/locations", h.CreateLocation)
	rg.GET("/warehouses/:id/locations", h.ListLocations)
	rg.DELETE("/locations/:id", h.DeleteLocation)
}

// Create registers a new warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	wh, err := h.topologyService.CreateWarehouse(c.Request.Context(), req.Name, req.Address)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wh)
}

// List returns all warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	warehouses, err := h.topologyService.Warehouses(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouses)
}

// CreateLocation adds a storage location to a warehouse
func (h *WarehouseHandler) CreateLocation(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loc, err := h.topologyService.CreateLocation(c.Request.Context(), appwarehouse.CreateLocationInput{
		WarehouseID: warehouseID,
		Code:        req.Code,
		Zone:        req.Zone,
		Shelf:       req.Shelf,
		Level:       req.Level,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, loc)
}

// ListLocations returns a warehouse's locations ordered by code
func (h *WarehouseHandler) ListLocations(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	locations, err := h.topologyService.LocationsByWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, locations)
}

// DeleteLocation removes an empty storage location
func (h *WarehouseHandler) DeleteLocation(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	if err := h.topologyService.DeleteLocation(c.Request.Context(), locationID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
