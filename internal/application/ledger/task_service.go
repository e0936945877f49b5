package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TaskService executes deferred warehouse tasks. Inside one unit of work,
// execution applies the task's stock mutation, resolves the task and, once
// the last pending sibling resolves, completes the parent movement.
type TaskService struct {
	scope    LedgerScope
	notifier Notifier
	retry    RetryConfig
	logger   *zap.Logger
}

// NewTaskService creates a task service
func NewTaskService(scope LedgerScope, notifier Notifier, retry RetryConfig, logger *zap.Logger) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		scope:    scope,
		notifier: notifier,
		retry:    retry,
		logger:   logger,
	}
}

// TaskExecutionResult reports what one execution resolved
type TaskExecutionResult struct {
	TaskID               uuid.UUID
	TransactionID        *uuid.UUID
	TransactionCompleted bool
}

// Execute resolves one pending task. The row lock on the task makes
// duplicate deliveries safe: the second executor sees COMPLETED and fails
// with TASK_ALREADY_RESOLVED instead of mutating stock twice.
func (s *TaskService) Execute(ctx context.Context, taskID uuid.UUID) (*TaskExecutionResult, error) {
	var result *TaskExecutionResult
	var lowStock *catalog.Product

	err := s.runWithRetry(ctx, func(ctx context.Context, repos Repositories) error {
		lowStock = nil

		task, err := repos.Tasks().FindByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if !task.IsPending() {
			return shared.ErrTaskAlreadyResolved
		}

		product, err := applyStockMutation(ctx, repos, task.Type, task.ProductID, task.LocationID, task.Quantity)
		if err != nil {
			return err
		}
		if product.IsBelowMinimum() {
			p := *product
			lowStock = &p
		}

		before := task.AuditValues()
		if err := task.Complete(); err != nil {
			return err
		}
		if err := repos.Tasks().Save(ctx, task); err != nil {
			return err
		}
		repos.Changes().RecordUpdate(ledger.WarehouseTask{}.TableName(), task.ID, before, task.AuditValues())

		result = &TaskExecutionResult{TaskID: task.ID, TransactionID: task.TransactionID}
		if task.TransactionID == nil {
			return nil
		}

		pending, err := repos.Tasks().CountPendingSiblings(ctx, *task.TransactionID, task.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}

		tx, err := repos.Transactions().FindByID(ctx, *task.TransactionID)
		if err != nil {
			return err
		}
		txBefore := tx.AuditValues()
		if err := tx.Complete(); err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		repos.Changes().RecordUpdate(ledger.StockTransaction{}.TableName(), tx.ID, txBefore, tx.AuditValues())
		result.TransactionCompleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lowStock != nil {
		s.notifier.StockBelowMinimum(ctx, lowStock.ID, lowStock.SKU, lowStock.StockQuantity, lowStock.MinStockLevel)
	}
	return result, nil
}

// PendingByLocation lists unresolved tasks queued against a location
func (s *TaskService) PendingByLocation(ctx context.Context, locationID uuid.UUID) ([]TaskResponse, error) {
	var responses []TaskResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		tasks, err := repos.Tasks().FindPendingByLocation(ctx, locationID)
		if err != nil {
			return err
		}
		responses = make([]TaskResponse, 0, len(tasks))
		for i := range tasks {
			responses = append(responses, newTaskResponse(&tasks[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// runWithRetry mirrors the movement engine's retry of transient failures
func (s *TaskService) runWithRetry(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return runWithRetry(ctx, s.scope, s.retry, s.logger, fn)
}
