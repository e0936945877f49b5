package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWarehouseTaskRepository implements WarehouseTaskRepository using GORM
type GormWarehouseTaskRepository struct {
	db *gorm.DB
}

// NewGormWarehouseTaskRepository creates a new GormWarehouseTaskRepository
func NewGormWarehouseTaskRepository(db *gorm.DB) *GormWarehouseTaskRepository {
	return &GormWarehouseTaskRepository{db: db}
}

// Create inserts a new warehouse task
func (r *GormWarehouseTaskRepository) Create(ctx context.Context, task *ledger.WarehouseTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByIDForUpdate loads a task with a row lock so concurrent executors
// serialize on it.
func (r *GormWarehouseTaskRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.WarehouseTask, error) {
	var task ledger.WarehouseTask
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindPendingByLocation returns unresolved tasks targeting a location
func (r *GormWarehouseTaskRepository) FindPendingByLocation(ctx context.Context, locationID uuid.UUID) ([]ledger.WarehouseTask, error) {
	var tasks []ledger.WarehouseTask
	if err := r.db.WithContext(ctx).
		Where("location_id = ? AND status = ?", locationID, ledger.TaskStatusPending).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountPendingSiblings counts the other unresolved tasks spawned by the same
// movement.
func (r *GormWarehouseTaskRepository) CountPendingSiblings(ctx context.Context, transactionID uuid.UUID, excludeTaskID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.WarehouseTask{}).
		Where("transaction_id = ? AND id <> ? AND status = ?", transactionID, excludeTaskID, ledger.TaskStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save updates an existing task
func (r *GormWarehouseTaskRepository) Save(ctx context.Context, task *ledger.WarehouseTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

var _ ledger.WarehouseTaskRepository = (*GormWarehouseTaskRepository)(nil)
