package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/partner"
	"github.com/warehousepro/backend/internal/domain/warehouse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormLedgerScope implements the ledger unit of work on one GORM transaction.
// The function's repository calls, the audit flush and the commit all happen
// on the same connection; any error rolls the whole unit back.
type GormLedgerScope struct {
	db      *gorm.DB
	timeout time.Duration
	logger  *zap.Logger
}

// NewGormLedgerScope creates a ledger scope over the given connection
func NewGormLedgerScope(db *gorm.DB, timeout time.Duration, logger *zap.Logger) *GormLedgerScope {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormLedgerScope{db: db, timeout: timeout, logger: logger}
}

// Execute runs fn inside one bounded database transaction. The change set
// collected by fn is flushed into audit_logs before the commit. Retryable
// store failures come back wrapped in *appledger.TransientError.
func (s *GormLedgerScope) Execute(ctx context.Context, fn func(ctx context.Context, repos appledger.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormRepositories{tx: tx, changes: ledger.NewChangeSet()}
		if err := fn(ctx, repos); err != nil {
			return err
		}
		return flushAuditTrail(ctx, tx, repos.changes, s.logger)
	})
	if err != nil && isTransientStoreError(err) {
		return &appledger.TransientError{Err: err}
	}
	return err
}

// isTransientStoreError classifies failures that a fresh attempt may not hit
// again: serialization conflicts, deadlocks and timed-out units of work.
func isTransientStoreError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "could not serialize")
}

// gormRepositories binds every repository to the current transaction
type gormRepositories struct {
	tx      *gorm.DB
	changes *ledger.ChangeSet
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormRepositories) Partners() partner.PartnerRepository {
	return NewGormPartnerRepository(r.tx)
}

func (r *gormRepositories) Payments() partner.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) Warehouses() warehouse.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

func (r *gormRepositories) Locations() warehouse.LocationRepository {
	return NewGormLocationRepository(r.tx)
}

func (r *gormRepositories) Inventories() ledger.InventoryRepository {
	return NewGormInventoryRepository(r.tx)
}

func (r *gormRepositories) Transactions() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormRepositories) Tasks() ledger.WarehouseTaskRepository {
	return NewGormWarehouseTaskRepository(r.tx)
}

func (r *gormRepositories) Changes() *ledger.ChangeSet {
	return r.changes
}

// Ensure GormLedgerScope implements the application scope
var _ appledger.LedgerScope = (*GormLedgerScope)(nil)

// Ensure gormRepositories implements Repositories
var _ appledger.Repositories = (*gormRepositories)(nil)
