package ledger

import (
	"context"
	"errors"

	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/partner"
	"github.com/warehousepro/backend/internal/domain/warehouse"
)

// LedgerScope runs a function as one atomic unit of work against the store.
// Everything the function does through the provided repositories commits or
// rolls back together, and every change recorded on the unit's ChangeSet is
// turned into an audit record inside the same commit.
type LedgerScope interface {
	// Execute runs fn inside a bounded transaction. A transient store failure
	// (serialization conflict, deadlock, timeout) is returned wrapped in
	// *TransientError so callers can retry the whole unit of work.
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Repositories exposes all repositories bound to the current unit of work
type Repositories interface {
	Products() catalog.ProductRepository
	Partners() partner.PartnerRepository
	Payments() partner.PaymentRepository
	Warehouses() warehouse.WarehouseRepository
	Locations() warehouse.LocationRepository
	Inventories() ledger.InventoryRepository
	Transactions() ledger.TransactionRepository
	Tasks() ledger.WarehouseTaskRepository
	// Changes is the audit change set of this unit of work. Mutating
	// operations record their before/after snapshots here explicitly.
	Changes() *ledger.ChangeSet
}

// TransientError wraps a store failure that is safe to retry by re-running
// the whole unit of work. Business-rule and not-found failures are never
// wrapped.
type TransientError struct {
	Err error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return "transient store failure: " + e.Err.Error()
}

// Unwrap returns the underlying store error
func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable store failure
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
