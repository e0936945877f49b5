package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// TaskStatus represents the lifecycle state of a warehouse task
type TaskStatus string

const (
	// TaskStatusPending means the physical movement has not been confirmed
	TaskStatusPending TaskStatus = "PENDING"
	// TaskStatusCompleted means an operator executed the movement
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// WarehouseTask is a deferred physical pick/put tied to a pending movement.
// It transitions PENDING to COMPLETED exactly once and is never reopened.
type WarehouseTask struct {
	shared.BaseEntity
	Type          TransactionType `gorm:"size:16;not null"`
	Status        TaskStatus      `gorm:"size:16;not null;default:PENDING;index"`
	Quantity      int64           `gorm:"not null"`
	TransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (WarehouseTask) TableName() string {
	return "warehouse_tasks"
}

// NewWarehouseTask creates a pending task for a single movement line
func NewWarehouseTask(txType TransactionType, productID, locationID uuid.UUID, transactionID *uuid.UUID, quantity int64) (*WarehouseTask, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Unknown task type")
	}
	if productID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Task product and location are required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Task quantity must be positive")
	}
	return &WarehouseTask{
		BaseEntity:    shared.NewBaseEntity(),
		Type:          txType,
		Status:        TaskStatusPending,
		Quantity:      quantity,
		TransactionID: transactionID,
		ProductID:     productID,
		LocationID:    locationID,
	}, nil
}

// IsPending returns true while the task awaits execution
func (t *WarehouseTask) IsPending() bool {
	return t.Status == TaskStatusPending
}

// Complete marks the task as executed. Completing a resolved task is an
// error, which is what makes at-least-once execution safe.
func (t *WarehouseTask) Complete() error {
	if t.Status != TaskStatusPending {
		return shared.ErrTaskAlreadyResolved
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// AuditValues returns the auditable field snapshot of the task
func (t *WarehouseTask) AuditValues() map[string]interface{} {
	values := map[string]interface{}{
		"Type":       string(t.Type),
		"Status":     string(t.Status),
		"Quantity":   t.Quantity,
		"ProductID":  t.ProductID.String(),
		"LocationID": t.LocationID.String(),
	}
	if t.TransactionID != nil {
		values["TransactionID"] = t.TransactionID.String()
	}
	return values
}
