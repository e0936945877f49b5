package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apppartner "github.com/warehousepro/backend/internal/application/partner"
	"github.com/warehousepro/backend/internal/domain/partner"
)

// PaymentHandler handles partner payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *apppartner.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *apppartner.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the request body for recording a payment
type CreatePaymentRequest struct {
	PartnerID string  `json:"partner_id" binding:"required,uuid"`
	Type      string  `json:"type" binding:"required,oneof=RECEIPT DISBURSEMENT"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Note      string  `json:"note" binding:"max=512"`
}

// RegisterRoutes wires payment endpoints into the API group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.Create)
	rg.GET("/partners/:id/payments", h.ListByPartner)
}

// Create records a payment and settles the partner's debt
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), apppartner.CreatePaymentInput{
		PartnerID: partnerID,
		Type:      partner.PaymentType(req.Type),
		Amount:    decimal.NewFromFloat(req.Amount),
		Note:      req.Note,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// ListByPartner returns a partner's payments, newest first
func (h *PaymentHandler) ListByPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	payments, err := h.paymentService.PaymentsByPartner(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}
