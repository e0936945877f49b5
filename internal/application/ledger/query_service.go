package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// QueryService serves read-only views of the ledger. Reads run through the
// same scope as writes so they see committed state only.
type QueryService struct {
	scope LedgerScope
}

// NewQueryService creates a query service
func NewQueryService(scope LedgerScope) *QueryService {
	return &QueryService{scope: scope}
}

// TransactionByID returns one movement with its lines
func (s *QueryService) TransactionByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	var resp *TransactionResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		tx, err := repos.Transactions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		r := newTransactionResponse(tx)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// TransactionsByPartner returns a partner's recent movements, newest first
func (s *QueryService) TransactionsByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]TransactionResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	var responses []TransactionResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		txs, err := repos.Transactions().FindByPartner(ctx, partnerID, limit)
		if err != nil {
			return err
		}
		responses = make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			responses = append(responses, newTransactionResponse(&txs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// RecentTransactions returns the most recent movements across all partners
func (s *QueryService) RecentTransactions(ctx context.Context, limit int) ([]TransactionResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	var responses []TransactionResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		txs, err := repos.Transactions().FindRecent(ctx, limit)
		if err != nil {
			return err
		}
		responses = make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			responses = append(responses, newTransactionResponse(&txs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// MovementHistoryBySKU returns the movement lines that touched a product,
// looked up by SKU, newest first.
func (s *QueryService) MovementHistoryBySKU(ctx context.Context, sku string, limit int) ([]TransactionDetailResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	var responses []TransactionDetailResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		product, err := repos.Products().FindBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product with SKU %s not found", sku))
			}
			return err
		}
		details, err := repos.Transactions().FindDetailsByProduct(ctx, product.ID, limit)
		if err != nil {
			return err
		}
		responses = make([]TransactionDetailResponse, 0, len(details))
		for i := range details {
			d := &details[i]
			responses = append(responses, TransactionDetailResponse{
				ProductID:  d.ProductID,
				LocationID: d.LocationID,
				Quantity:   d.Quantity,
				UnitPrice:  d.UnitPrice,
				Amount:     d.Amount(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// InventoryReport pages the stock-on-hand report across warehouses
func (s *QueryService) InventoryReport(ctx context.Context, filter ledger.StockReportFilter) (shared.Paginated[ledger.StockReportRow], error) {
	var page shared.Paginated[ledger.StockReportRow]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		page, err = repos.Inventories().FindReport(ctx, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[ledger.StockReportRow]{}, err
	}
	return page, nil
}

// StockByProduct returns a product's per-location stock rows with their
// location codes resolved.
func (s *QueryService) StockByProduct(ctx context.Context, productID uuid.UUID) ([]StockRowResponse, error) {
	var responses []StockRowResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rows, err := repos.Inventories().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}
		responses = make([]StockRowResponse, 0, len(rows))
		for i := range rows {
			row := &rows[i]
			code := ""
			if loc, err := repos.Locations().FindByID(ctx, row.LocationID); err == nil {
				code = loc.Code
			}
			responses = append(responses, StockRowResponse{
				LocationID:   row.LocationID,
				LocationCode: code,
				Quantity:     row.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}
