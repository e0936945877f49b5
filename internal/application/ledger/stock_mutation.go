package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// applyStockMutation applies one (product, location, quantity, type) tuple to
// the stock row and the product aggregate inside the current unit of work.
// This is the single place where the non-negative-quantity and aggregate
// conservation invariants are enforced; the movement processor and the task
// queue both go through it.
//
// Imports create the row lazily; exports fail with INSUFFICIENT_STOCK before
// anything is mutated, and a row drained to zero is removed. Every change is
// recorded on the unit's ChangeSet.
func applyStockMutation(
	ctx context.Context,
	repos Repositories,
	txType ledger.TransactionType,
	productID, locationID uuid.UUID,
	quantity int64,
) (*catalog.Product, error) {
	product, err := repos.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", productID))
		}
		return nil, err
	}
	productBefore := product.AuditValues()

	inv, err := repos.Inventories().FindForUpdate(ctx, productID, locationID)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		inv = nil
	default:
		return nil, err
	}

	switch txType {
	case ledger.TransactionTypeImport:
		if inv == nil {
			inv, err = ledger.NewInventory(productID, locationID)
			if err != nil {
				return nil, err
			}
			if err := inv.Increase(quantity); err != nil {
				return nil, err
			}
			if err := repos.Inventories().Save(ctx, inv); err != nil {
				return nil, err
			}
			repos.Changes().RecordCreate(ledger.Inventory{}.TableName(), inv.ID, inv.AuditValues())
		} else {
			before := inv.AuditValues()
			if err := inv.Increase(quantity); err != nil {
				return nil, err
			}
			if err := repos.Inventories().Save(ctx, inv); err != nil {
				return nil, err
			}
			repos.Changes().RecordUpdate(ledger.Inventory{}.TableName(), inv.ID, before, inv.AuditValues())
		}
		if err := product.IncreaseStock(quantity); err != nil {
			return nil, err
		}

	case ledger.TransactionTypeExport:
		if inv == nil {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for product %s at location: available=0, requested=%d", product.SKU, quantity))
		}
		before := inv.AuditValues()
		if err := inv.Decrease(quantity); err != nil {
			return nil, err
		}
		if inv.IsEmpty() {
			if err := repos.Inventories().Delete(ctx, inv.ID); err != nil {
				return nil, err
			}
			repos.Changes().RecordDelete(ledger.Inventory{}.TableName(), inv.ID, before)
		} else {
			if err := repos.Inventories().Save(ctx, inv); err != nil {
				return nil, err
			}
			repos.Changes().RecordUpdate(ledger.Inventory{}.TableName(), inv.ID, before, inv.AuditValues())
		}
		if err := product.DecreaseStock(quantity); err != nil {
			return nil, err
		}

	default:
		return nil, shared.NewDomainError("INVALID_REQUEST", "Unsupported stock mutation type")
	}

	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, err
	}
	repos.Changes().RecordUpdate(catalog.Product{}.TableName(), product.ID, productBefore, product.AuditValues())

	return product, nil
}
