package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// StockReportRow is one line of the stock-on-hand report: a stock row joined
// with its product and location identity, for display
type StockReportRow struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	LocationID    uuid.UUID `json:"location_id"`
	LocationCode  string    `json:"location_code"`
	Quantity      int64     `json:"quantity"`
}

// StockReportFilter narrows the stock-on-hand report
type StockReportFilter struct {
	WarehouseID *uuid.UUID
	SKU         string
	Page        int
	PageSize    int
}

// InventoryRepository provides access to per-location stock rows. All
// mutating lookups take row locks; two movements touching the same
// (product, location) row serialize on the store.
type InventoryRepository interface {
	// FindForUpdate loads one stock row with a row lock, or shared.ErrNotFound.
	FindForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*Inventory, error)
	// FindCandidatesForUpdate loads and locks all positive stock rows for a
	// product, optionally restricted to a warehouse, joined with the location
	// code and ordered by it ascending.
	FindCandidatesForUpdate(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) ([]AllocationCandidate, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Inventory, error)
	// FindReport pages the stock-on-hand report, ordered by SKU then
	// location code.
	FindReport(ctx context.Context, filter StockReportFilter) (shared.Paginated[StockReportRow], error)
	CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
	Save(ctx context.Context, inv *Inventory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository provides access to movement headers and their lines
type TransactionRepository interface {
	Create(ctx context.Context, tx *StockTransaction) error
	// FindByID loads the header with its details, or shared.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)
	FindByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]StockTransaction, error)
	FindRecent(ctx context.Context, limit int) ([]StockTransaction, error)
	FindDetailsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]TransactionDetail, error)
	Save(ctx context.Context, tx *StockTransaction) error
}

// WarehouseTaskRepository provides access to deferred physical tasks
type WarehouseTaskRepository interface {
	Create(ctx context.Context, task *WarehouseTask) error
	// FindByIDForUpdate loads a task with a row lock so that concurrent
	// executions of the same task serialize, or shared.ErrTaskNotFound.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*WarehouseTask, error)
	FindPendingByLocation(ctx context.Context, locationID uuid.UUID) ([]WarehouseTask, error)
	// CountPendingSiblings counts other PENDING tasks of the same parent
	// transaction, excluding the given task.
	CountPendingSiblings(ctx context.Context, transactionID, excludeTaskID uuid.UUID) (int64, error)
	Save(ctx context.Context, task *WarehouseTask) error
}

// AuditLogFilter narrows an audit trail query
type AuditLogFilter struct {
	Action         string
	Table          string
	OnlySuspicious bool
	Search         string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

// AuditLogRepository provides append-only access to the audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, log *AuditLog) error
	Query(ctx context.Context, filter AuditLogFilter) (shared.Paginated[AuditLog], error)
}
