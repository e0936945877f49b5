package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/ledger"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *appledger.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *appledger.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditQueryRequest carries the audit trail query parameters
type AuditQueryRequest struct {
	Action     string `form:"action" binding:"omitempty,oneof=CREATE UPDATE DELETE"`
	Table      string `form:"table" binding:"omitempty,max=64"`
	Suspicious bool   `form:"suspicious"`
	Search     string `form:"search" binding:"omitempty,max=255"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// RegisterRoutes wires audit endpoints into the API group
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit-logs", h.Query)
}

// Query returns a filtered page of the audit trail, newest first
func (h *AuditHandler) Query(c *gin.Context) {
	var req AuditQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledger.AuditLogFilter{
		Action:         req.Action,
		Table:          req.Table,
		OnlySuspicious: req.Suspicious,
		Search:         req.Search,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}

	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			h.BadRequest(c, "Invalid 'from' timestamp, expected RFC3339")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			h.BadRequest(c, "Invalid 'to' timestamp, expected RFC3339")
			return
		}
		filter.To = &to
	}

	page, err := h.auditService.Query(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}
