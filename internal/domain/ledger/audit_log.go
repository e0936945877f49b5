package ledger

import (
	"github.com/warehousepro/backend/internal/domain/shared"
)

// AuditAction is the kind of entity mutation an audit record describes
type AuditAction string

const (
	// AuditActionCreate records a new entity instance
	AuditActionCreate AuditAction = "CREATE"
	// AuditActionUpdate records changed fields of an existing instance
	AuditActionUpdate AuditAction = "UPDATE"
	// AuditActionDelete records a removed instance
	AuditActionDelete AuditAction = "DELETE"
)

// AuditLog is one immutable record of one entity mutation. Rows are written
// only by the ledger's commit path, in the same unit of work as the change
// they describe, and are never updated or deleted afterwards.
type AuditLog struct {
	shared.BaseEntity
	UserID       string      `gorm:"size:128;not null"`
	Action       AuditAction `gorm:"size:16;not null;index"`
	TableName_   string      `gorm:"column:table_name;size:64;not null;index"`
	RecordID     string      `gorm:"size:512;not null"`
	OldValues    *string     `gorm:"type:text"`
	NewValues    *string     `gorm:"type:text"`
	IsSuspicious bool        `gorm:"not null;default:false;index"`
	RiskNote     *string     `gorm:"size:512"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}
