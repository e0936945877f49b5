package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier publishes downstream signals after a unit of work commits. The
// ledger never blocks on it; delivery is best-effort.
type Notifier interface {
	TransactionCreated(ctx context.Context, transactionID uuid.UUID, totalAmount decimal.Decimal)
	StockBelowMinimum(ctx context.Context, productID uuid.UUID, sku string, quantity, minLevel int64)
}

// NopNotifier discards all signals
type NopNotifier struct{}

// TransactionCreated does nothing
func (NopNotifier) TransactionCreated(context.Context, uuid.UUID, decimal.Decimal) {}

// StockBelowMinimum does nothing
func (NopNotifier) StockBelowMinimum(context.Context, uuid.UUID, string, int64, int64) {}

// RetryConfig bounds the transparent retry of transient store failures
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig returns the retry bound used when none is configured
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}
}

// MovementService is the atomic movement engine. Every business movement
// (import, export, transfer, cancellation) runs as one unit of work: stock
// rows, the product aggregate, the movement header with its lines, the
// partner balance and the audit records commit together or not at all.
type MovementService struct {
	scope    LedgerScope
	notifier Notifier
	retry    RetryConfig
	logger   *zap.Logger
}

// NewMovementService creates a movement service
func NewMovementService(scope LedgerScope, notifier Notifier, retry RetryConfig, logger *zap.Logger) *MovementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementService{
		scope:    scope,
		notifier: notifier,
		retry:    retry,
		logger:   logger,
	}
}

// CreateMovement validates and applies one business movement. Transient store
// failures re-run the whole unit of work up to the configured bound; business
// failures surface immediately with a full rollback.
func (s *MovementService) CreateMovement(ctx context.Context, input CreateMovementInput) (*MovementResult, error) {
	if err := validateMovementInput(input); err != nil {
		return nil, err
	}

	var result *MovementResult
	var lowStock []catalog.Product

	err := s.runWithRetry(ctx, func(ctx context.Context, repos Repositories) error {
		lowStock = lowStock[:0]

		note := input.Note
		if input.AmountPaid.GreaterThan(decimal.Zero) {
			note = fmt.Sprintf("%s | Paid: %s", note, input.AmountPaid.StringFixed(2))
		}
		tx, err := ledger.NewStockTransaction(input.Type, input.PartnerID, input.WarehouseID, note, input.CreatedBy)
		if err != nil {
			return err
		}

		var taskIDs []uuid.UUID
		if input.Deferred {
			tx.MarkPending()
			taskIDs, err = s.applyDeferredLines(ctx, repos, tx, input)
		} else {
			lowStock, err = s.applyLines(ctx, repos, tx, input)
		}
		if err != nil {
			return err
		}

		if input.PartnerID != nil {
			if err := s.adjustPartnerDebt(ctx, repos, *input.PartnerID, tx.TotalAmount, input.AmountPaid); err != nil {
				return err
			}
		}

		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		repos.Changes().RecordCreate(ledger.StockTransaction{}.TableName(), tx.ID, tx.AuditValues())
		for i := range tx.Details {
			d := &tx.Details[i]
			repos.Changes().RecordCreate(ledger.TransactionDetail{}.TableName(), d.ID, d.AuditValues())
		}

		result = &MovementResult{
			TransactionID: tx.ID,
			TotalAmount:   tx.TotalAmount,
			Status:        tx.Status,
			TaskIDs:       taskIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.Notify {
		s.notifier.TransactionCreated(ctx, result.TransactionID, result.TotalAmount)
	}
	for i := range lowStock {
		p := &lowStock[i]
		s.notifier.StockBelowMinimum(ctx, p.ID, p.SKU, p.StockQuantity, p.MinStockLevel)
	}
	return result, nil
}

// applyLines mutates stock for every line of an immediate movement and
// persists one detail per (product, location, quantity) actually applied.
// An allocator split turns one unpinned export line into several details.
func (s *MovementService) applyLines(ctx context.Context, repos Repositories, tx *ledger.StockTransaction, input CreateMovementInput) ([]catalog.Product, error) {
	var lowStock []catalog.Product
	for _, line := range input.Lines {
		if line.LocationID != nil {
			if err := s.requireLocation(ctx, repos, *line.LocationID); err != nil {
				return nil, err
			}
			product, err := applyStockMutation(ctx, repos, input.Type, line.ProductID, *line.LocationID, line.Quantity)
			if err != nil {
				return nil, err
			}
			if err := tx.AddDetail(line.ProductID, line.LocationID, line.Quantity, line.UnitPrice); err != nil {
				return nil, err
			}
			if product.IsBelowMinimum() {
				lowStock = append(lowStock, *product)
			}
			continue
		}

		// Export without a pinned location: plan inside the same unit of
		// work, then deduct per draw.
		if _, err := s.requireProduct(ctx, repos, line.ProductID); err != nil {
			return nil, err
		}
		candidates, err := repos.Inventories().FindCandidatesForUpdate(ctx, line.ProductID, input.WarehouseID)
		if err != nil {
			return nil, err
		}
		draws, err := ledger.PlanAllocation(candidates, line.Quantity)
		if err != nil {
			return nil, err
		}
		var product *catalog.Product
		for _, draw := range draws {
			product, err = applyStockMutation(ctx, repos, ledger.TransactionTypeExport, line.ProductID, draw.LocationID, draw.Quantity)
			if err != nil {
				return nil, err
			}
			locationID := draw.LocationID
			if err := tx.AddDetail(line.ProductID, &locationID, draw.Quantity, line.UnitPrice); err != nil {
				return nil, err
			}
		}
		if product != nil && product.IsBelowMinimum() {
			lowStock = append(lowStock, *product)
		}
	}
	return lowStock, nil
}

// applyDeferredLines persists the movement as pending work: one detail and
// one warehouse task per line, stock untouched until the tasks execute.
func (s *MovementService) applyDeferredLines(ctx context.Context, repos Repositories, tx *ledger.StockTransaction, input CreateMovementInput) ([]uuid.UUID, error) {
	taskIDs := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		if _, err := s.requireProduct(ctx, repos, line.ProductID); err != nil {
			return nil, err
		}
		if err := s.requireLocation(ctx, repos, *line.LocationID); err != nil {
			return nil, err
		}
		if err := tx.AddDetail(line.ProductID, line.LocationID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
		task, err := ledger.NewWarehouseTask(input.Type, line.ProductID, *line.LocationID, &tx.ID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if err := repos.Tasks().Create(ctx, task); err != nil {
			return nil, err
		}
		repos.Changes().RecordCreate(ledger.WarehouseTask{}.TableName(), task.ID, task.AuditValues())
		taskIDs = append(taskIDs, task.ID)
	}
	return taskIDs, nil
}

// adjustPartnerDebt applies the movement's monetary effect on the partner's
// running balance: the unpaid remainder increases what the partner owes.
func (s *MovementService) adjustPartnerDebt(ctx context.Context, repos Repositories, partnerID uuid.UUID, total, amountPaid decimal.Decimal) error {
	p, err := repos.Partners().FindByIDForUpdate(ctx, partnerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PARTNER_NOT_FOUND", fmt.Sprintf("Partner %s not found", partnerID))
		}
		return err
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	remaining := total.Sub(amountPaid)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	before := p.AuditValues()
	if err := p.AddDebt(remaining); err != nil {
		return err
	}
	if err := repos.Partners().Save(ctx, p); err != nil {
		return err
	}
	repos.Changes().RecordUpdate(p.TableName(), p.ID, before, p.AuditValues())
	return nil
}

// Transfer moves stock of one product between two locations without changing
// the product aggregate. The whole move fails if the source cannot cover it.
func (s *MovementService) Transfer(ctx context.Context, input TransferInput) (*MovementResult, error) {
	if input.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Transfer quantity must be positive")
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Source and destination locations are identical")
	}

	var result *MovementResult
	err := s.runWithRetry(ctx, func(ctx context.Context, repos Repositories) error {
		if _, err := s.requireProduct(ctx, repos, input.ProductID); err != nil {
			return err
		}
		if err := s.requireLocation(ctx, repos, input.FromLocationID); err != nil {
			return err
		}
		destLoc, err := repos.Locations().FindByID(ctx, input.ToLocationID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("LOCATION_NOT_FOUND", fmt.Sprintf("Location %s not found", input.ToLocationID))
			}
			return err
		}

		source, err := repos.Inventories().FindForUpdate(ctx, input.ProductID, input.FromLocationID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock at source location: available=0, requested=%d", input.Quantity))
			}
			return err
		}
		sourceBefore := source.AuditValues()
		if err := source.Decrease(input.Quantity); err != nil {
			return err
		}

		dest, err := repos.Inventories().FindForUpdate(ctx, input.ProductID, input.ToLocationID)
		switch {
		case err == nil:
			destBefore := dest.AuditValues()
			if err := dest.Increase(input.Quantity); err != nil {
				return err
			}
			if err := repos.Inventories().Save(ctx, dest); err != nil {
				return err
			}
			repos.Changes().RecordUpdate(ledger.Inventory{}.TableName(), dest.ID, destBefore, dest.AuditValues())
		case errors.Is(err, shared.ErrNotFound):
			dest, err = ledger.NewInventory(input.ProductID, input.ToLocationID)
			if err != nil {
				return err
			}
			if err := dest.Increase(input.Quantity); err != nil {
				return err
			}
			if err := repos.Inventories().Save(ctx, dest); err != nil {
				return err
			}
			repos.Changes().RecordCreate(ledger.Inventory{}.TableName(), dest.ID, dest.AuditValues())
		default:
			return err
		}

		if source.IsEmpty() {
			if err := repos.Inventories().Delete(ctx, source.ID); err != nil {
				return err
			}
			repos.Changes().RecordDelete(ledger.Inventory{}.TableName(), source.ID, sourceBefore)
		} else {
			if err := repos.Inventories().Save(ctx, source); err != nil {
				return err
			}
			repos.Changes().RecordUpdate(ledger.Inventory{}.TableName(), source.ID, sourceBefore, source.AuditValues())
		}

		tx, err := ledger.NewStockTransaction(ledger.TransactionTypeTransfer, nil, &destLoc.WarehouseID, input.Note, input.CreatedBy)
		if err != nil {
			return err
		}
		toLocation := input.ToLocationID
		if err := tx.AddDetail(input.ProductID, &toLocation, input.Quantity, decimal.Zero); err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		repos.Changes().RecordCreate(ledger.StockTransaction{}.TableName(), tx.ID, tx.AuditValues())
		for i := range tx.Details {
			d := &tx.Details[i]
			repos.Changes().RecordCreate(ledger.TransactionDetail{}.TableName(), d.ID, d.AuditValues())
		}

		result = &MovementResult{TransactionID: tx.ID, TotalAmount: tx.TotalAmount, Status: tx.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus changes a movement's status. Cancelling a completed export
// restores both the product aggregates and the location rows its details
// consumed, keeping the aggregate conservation invariant intact.
func (s *MovementService) UpdateStatus(ctx context.Context, transactionID uuid.UUID, newStatus ledger.TransactionStatus) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_REQUEST", "Unknown transaction status")
	}

	return s.runWithRetry(ctx, func(ctx context.Context, repos Repositories) error {
		tx, err := repos.Transactions().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.IsCancelled() {
			return shared.ErrAlreadyCancelled
		}
		before := tx.AuditValues()

		if newStatus == ledger.TransactionStatusCancelled &&
			tx.Type == ledger.TransactionTypeExport &&
			tx.Status == ledger.TransactionStatusCompleted {
			if err := s.restoreCancelledExport(ctx, repos, tx); err != nil {
				return err
			}
		}

		tx.Status = newStatus
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		repos.Changes().RecordUpdate(ledger.StockTransaction{}.TableName(), tx.ID, before, tx.AuditValues())
		return nil
	})
}

// restoreCancelledExport reverses the stock effect of every detail line
func (s *MovementService) restoreCancelledExport(ctx context.Context, repos Repositories, tx *ledger.StockTransaction) error {
	for i := range tx.Details {
		d := &tx.Details[i]
		if d.LocationID == nil {
			// Detail never touched a concrete row; restore the aggregate only.
			product, err := repos.Products().FindByIDForUpdate(ctx, d.ProductID)
			if err != nil {
				return err
			}
			before := product.AuditValues()
			if err := product.IncreaseStock(d.Quantity); err != nil {
				return err
			}
			if err := repos.Products().Save(ctx, product); err != nil {
				return err
			}
			repos.Changes().RecordUpdate(product.TableName(), product.ID, before, product.AuditValues())
			continue
		}
		if _, err := applyStockMutation(ctx, repos, ledger.TransactionTypeImport, d.ProductID, *d.LocationID, d.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// requireProduct loads a product or fails with PRODUCT_NOT_FOUND
func (s *MovementService) requireProduct(ctx context.Context, repos Repositories, productID uuid.UUID) (*catalog.Product, error) {
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", productID))
		}
		return nil, err
	}
	return product, nil
}

// requireLocation verifies a location exists or fails with LOCATION_NOT_FOUND
func (s *MovementService) requireLocation(ctx context.Context, repos Repositories, locationID uuid.UUID) error {
	if _, err := repos.Locations().FindByID(ctx, locationID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("LOCATION_NOT_FOUND", fmt.Sprintf("Location %s not found", locationID))
		}
		return err
	}
	return nil
}

func (s *MovementService) runWithRetry(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return runWithRetry(ctx, s.scope, s.retry, s.logger, fn)
}

// validateMovementInput rejects malformed requests before any store access
func validateMovementInput(input CreateMovementInput) error {
	if input.Type != ledger.TransactionTypeImport && input.Type != ledger.TransactionTypeExport {
		return shared.NewDomainError("INVALID_REQUEST", "Movement type must be IMPORT or EXPORT")
	}
	if len(input.Lines) == 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Movement requires at least one line")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_REQUEST", fmt.Sprintf("Line %d: product is required", i))
		}
		if line.Quantity <= 0 {
			return shared.NewDomainError("INVALID_REQUEST", fmt.Sprintf("Line %d: quantity must be positive", i))
		}
		if line.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_REQUEST", fmt.Sprintf("Line %d: unit price cannot be negative", i))
		}
		if line.LocationID == nil && input.Type == ledger.TransactionTypeImport {
			return shared.NewDomainError("INVALID_REQUEST", fmt.Sprintf("Line %d: import requires a location", i))
		}
		if line.LocationID == nil && input.Deferred {
			return shared.NewDomainError("INVALID_REQUEST", fmt.Sprintf("Line %d: deferred movement requires a location", i))
		}
	}
	if input.AmountPaid.IsNegative() {
		return shared.NewDomainError("INVALID_REQUEST", "Paid amount cannot be negative")
	}
	return nil
}
