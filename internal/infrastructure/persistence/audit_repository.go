package persistence

import (
	"context"

	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an audit log entry
func (r *GormAuditLogRepository) Create(ctx context.Context, log *ledger.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Query returns a page of audit log entries matching the filter, newest first
func (r *GormAuditLogRepository) Query(ctx context.Context, filter ledger.AuditLogFilter) (shared.Paginated[ledger.AuditLog], error) {
	query := r.db.WithContext(ctx).Model(&ledger.AuditLog{})

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Table != "" {
		query = query.Where("table_name = ?", filter.Table)
	}
	if filter.OnlySuspicious {
		query = query.Where("is_suspicious = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"record_id ILIKE ? OR old_values ILIKE ? OR new_values ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[ledger.AuditLog]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var logs []ledger.AuditLog
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error; err != nil {
		return shared.Paginated[ledger.AuditLog]{}, err
	}

	return shared.NewPaginated(logs, total, page, pageSize), nil
}

var _ ledger.AuditLogRepository = (*GormAuditLogRepository)(nil)
