package ledger

import (
	"context"

	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// AuditService serves the audit trail. The trail is append-only: this
// service only reads, writes happen inside the unit-of-work flush.
type AuditService struct {
	logs ledger.AuditLogRepository
}

// NewAuditService creates an audit query service
func NewAuditService(logs ledger.AuditLogRepository) *AuditService {
	return &AuditService{logs: logs}
}

// Query returns a page of audit records matching the filter, newest first
func (s *AuditService) Query(ctx context.Context, filter ledger.AuditLogFilter) (shared.Paginated[ledger.AuditLog], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	return s.logs.Query(ctx, filter)
}
