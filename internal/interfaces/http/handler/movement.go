package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/infrastructure/logger"
)

// MovementHandler handles stock movement API endpoints
type MovementHandler struct {
	BaseHandler
	movementService *appledger.MovementService
	queryService    *appledger.QueryService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService *appledger.MovementService, queryService *appledger.QueryService) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
		queryService:    queryService,
	}
}

// MovementLineRequest is one line of a movement request
type MovementLineRequest struct {
	ProductID  string  `json:"product_id" binding:"required,uuid"`
	LocationID *string `json:"location_id" binding:"omitempty,uuid"`
	Quantity   int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" binding:"gte=0"`
}

// CreateMovementRequest is the request body for creating a movement
type CreateMovementRequest struct {
	Type        string                `json:"type" binding:"required,oneof=IMPORT EXPORT"`
	PartnerID   *string               `json:"partner_id" binding:"omitempty,uuid"`
	WarehouseID *string               `json:"warehouse_id" binding:"omitempty,uuid"`
	Lines       []MovementLineRequest `json:"lines" binding:"required,min=1,dive"`
	Note        string                `json:"note" binding:"max=512"`
	AmountPaid  float64               `json:"amount_paid" binding:"gte=0"`
	Deferred    bool                  `json:"deferred"`
	Notify      bool                  `json:"notify"`
}

// TransferRequest is the request body for moving stock between locations
type TransferRequest struct {
	ProductID      string `json:"product_id" binding:"required,uuid"`
	FromLocationID string `json:"from_location_id" binding:"required,uuid"`
	ToLocationID   string `json:"to_location_id" binding:"required,uuid"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	Note           string `json:"note" binding:"max=512"`
}

// UpdateStatusRequest is the request body for changing a movement's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED PENDING CANCELLED"`
}

// RegisterRoutes wires movement endpoints into the API group
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/movements")
	{
		movements.POST("", h.Create)
		movements.POST("/transfer", h.Transfer)
		movements.GET("", h.ListRecent)
		movements.GET("/:id", h.GetByID)
		movements.PUT("/:id/status", h.UpdateStatus)
	}
	rg.GET("/partners/:id/movements", h.ListByPartner)
}

// Create records an import or export movement
func (h *MovementHandler) Create(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := appledger.CreateMovementInput{
		Type:       ledger.TransactionType(req.Type),
		Note:       req.Note,
		CreatedBy:  actingUser(c),
		AmountPaid: decimal.NewFromFloat(req.AmountPaid),
		Deferred:   req.Deferred,
		Notify:     req.Notify,
	}

	if req.PartnerID != nil {
		id, err := uuid.Parse(*req.PartnerID)
		if err != nil {
			h.BadRequest(c, "Invalid partner ID format")
			return
		}
		input.PartnerID = &id
	}
	if req.WarehouseID != nil {
		id, err := uuid.Parse(*req.WarehouseID)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		input.WarehouseID = &id
	}

	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		ml := appledger.MovementLine{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: decimal.NewFromFloat(line.UnitPrice),
		}
		if line.LocationID != nil {
			locationID, err := uuid.Parse(*line.LocationID)
			if err != nil {
				h.BadRequest(c, "Invalid location ID format")
				return
			}
			ml.LocationID = &locationID
		}
		input.Lines = append(input.Lines, ml)
	}

	result, err := h.movementService.CreateMovement(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Transfer moves stock between two locations
func (h *MovementHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	fromID, err := uuid.Parse(req.FromLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid source location ID format")
		return
	}
	toID, err := uuid.Parse(req.ToLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid destination location ID format")
		return
	}

	result, err := h.movementService.Transfer(c.Request.Context(), appledger.TransferInput{
		ProductID:      productID,
		FromLocationID: fromID,
		ToLocationID:   toID,
		Quantity:       req.Quantity,
		Note:           req.Note,
		CreatedBy:      actingUser(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID returns one movement with its detail lines
func (h *MovementHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	tx, err := h.queryService.TransactionByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// UpdateStatus changes a movement's status. Cancelling a completed export
// puts its stock back.
func (h *MovementHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.movementService.UpdateStatus(c.Request.Context(), id, ledger.TransactionStatus(req.Status)); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListRecent returns the most recent movements
func (h *MovementHandler) ListRecent(c *gin.Context) {
	limit := parseLimit(c, 50)

	txs, err := h.queryService.RecentTransactions(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, txs)
}

// ListByPartner returns a partner's movements, newest first
func (h *MovementHandler) ListByPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	limit := parseLimit(c, 50)

	txs, err := h.queryService.TransactionsByPartner(c.Request.Context(), partnerID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, txs)
}

// actingUser resolves who is performing the request, defaulting to "system"
func actingUser(c *gin.Context) string {
	if user := logger.GetUserID(c.Request.Context()); user != "" {
		return user
	}
	return "system"
}

// parseLimit reads an optional limit query parameter
func parseLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
