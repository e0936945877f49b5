package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/partner"
	"github.com/warehousepro/backend/internal/domain/shared"
	"github.com/warehousepro/backend/internal/domain/warehouse"
)

type fixture struct {
	store    *memStore
	scope    *memScope
	notifier *recordingNotifier
	movement *MovementService
	tasks    *TaskService
}

func newFixture() *fixture {
	store := newMemStore()
	scope := newMemScope(store)
	notifier := &recordingNotifier{}
	retry := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}
	return &fixture{
		store:    store,
		scope:    scope,
		notifier: notifier,
		movement: NewMovementService(scope, notifier, retry, nil),
		tasks:    NewTaskService(scope, notifier, retry, nil),
	}
}

func (f *fixture) seedProduct(t *testing.T, sku string, price decimal.Decimal, minLevel int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, "PCS", price)
	require.NoError(t, err)
	p.MinStockLevel = minLevel
	f.store.products[p.ID] = *p
	return p
}

func (f *fixture) seedWarehouse(t *testing.T) *warehouse.Warehouse {
	t.Helper()
	wh, err := warehouse.NewWarehouse("Central", "1 Dock Rd")
	require.NoError(t, err)
	f.store.warehouses[wh.ID] = *wh
	return wh
}

func (f *fixture) seedLocation(t *testing.T, warehouseID uuid.UUID, code string) *warehouse.Location {
	t.Helper()
	loc, err := warehouse.NewLocation(warehouseID, code, "A", "01", "01")
	require.NoError(t, err)
	f.store.locations[loc.ID] = *loc
	return loc
}

func (f *fixture) seedPartner(t *testing.T, partnerType partner.PartnerType) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner("Acme", partnerType)
	require.NoError(t, err)
	f.store.partners[p.ID] = *p
	return p
}

// seedStock places quantity at a location and keeps the product aggregate
// consistent with the sum of its rows.
func (f *fixture) seedStock(t *testing.T, productID, locationID uuid.UUID, quantity int64) {
	t.Helper()
	inv, err := ledger.NewInventory(productID, locationID)
	require.NoError(t, err)
	require.NoError(t, inv.Increase(quantity))
	f.store.inventories[inv.ID] = *inv
	p := f.store.products[productID]
	p.StockQuantity += quantity
	f.store.products[productID] = p
}

func (f *fixture) productStock(productID uuid.UUID) int64 {
	return f.store.products[productID].StockQuantity
}

func (f *fixture) stockAt(productID, locationID uuid.UUID) (int64, bool) {
	for _, inv := range f.store.inventories {
		if inv.ProductID == productID && inv.LocationID == locationID {
			return inv.Quantity, true
		}
	}
	return 0, false
}

func (f *fixture) taskPending(taskID uuid.UUID) bool {
	task := f.store.tasks[taskID]
	return task.IsPending()
}

func (f *fixture) auditCount(table string, action ledger.AuditAction) int {
	n := 0
	for _, log := range f.store.auditLogs {
		if log.TableName_ == table && log.Action == action {
			n++
		}
	}
	return n
}

func TestCreateMovementImport(t *testing.T) {
	t.Run("creates the stock row and raises the aggregate", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromFloat(12.50), 0)
		supplier := f.seedPartner(t, partner.PartnerTypeSupplier)

		result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type:      ledger.TransactionTypeImport,
			PartnerID: &supplier.ID,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 50, UnitPrice: decimal.NewFromFloat(12.50)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)

		assert.Equal(t, ledger.TransactionStatusCompleted, result.Status)
		assert.True(t, result.TotalAmount.Equal(decimal.NewFromFloat(625)))

		qty, ok := f.stockAt(product.ID, loc.ID)
		require.True(t, ok)
		assert.Equal(t, int64(50), qty)
		assert.Equal(t, int64(50), f.productStock(product.ID))

		tx := f.store.transactions[result.TransactionID]
		require.Len(t, tx.Details, 1)
		assert.Equal(t, int64(50), tx.Details[0].Quantity)

		assert.Equal(t, 1, f.auditCount("inventories", ledger.AuditActionCreate))
		assert.Equal(t, 1, f.auditCount("products", ledger.AuditActionUpdate))
		assert.Equal(t, 1, f.auditCount("transactions", ledger.AuditActionCreate))
		assert.Equal(t, 1, f.auditCount("transaction_details", ledger.AuditActionCreate))
	})

	t.Run("second import into the same row updates it", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(10), 0)
		f.seedStock(t, product.ID, loc.ID, 20)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeImport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 30, UnitPrice: decimal.NewFromInt(10)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)

		qty, _ := f.stockAt(product.ID, loc.ID)
		assert.Equal(t, int64(50), qty)
		assert.Equal(t, int64(50), f.productStock(product.ID))
		assert.Equal(t, 1, f.auditCount("inventories", ledger.AuditActionUpdate))
	})

	t.Run("adds the unpaid remainder to the partner's debt", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(10), 0)
		supplier := f.seedPartner(t, partner.PartnerTypeSupplier)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type:      ledger.TransactionTypeImport,
			PartnerID: &supplier.ID,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(10)},
			},
			AmountPaid: decimal.NewFromInt(40),
			CreatedBy:  "tester",
		})
		require.NoError(t, err)

		debt := f.store.partners[supplier.ID].DebtAmount
		assert.True(t, debt.Equal(decimal.NewFromInt(60)), "debt = %s", debt)
		assert.Equal(t, 1, f.auditCount("partners", ledger.AuditActionUpdate))
	})

	t.Run("overpayment leaves the debt untouched", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(10), 0)
		supplier := f.seedPartner(t, partner.PartnerTypeSupplier)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type:      ledger.TransactionTypeImport,
			PartnerID: &supplier.ID,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(10)},
			},
			AmountPaid: decimal.NewFromInt(150),
			CreatedBy:  "tester",
		})
		require.NoError(t, err)
		assert.True(t, f.store.partners[supplier.ID].DebtAmount.IsZero())
	})

	t.Run("unknown product rolls back everything", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeImport,
			Lines: []MovementLine{
				{ProductID: uuid.New(), LocationID: &loc.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(1)},
			},
			CreatedBy: "tester",
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "PRODUCT_NOT_FOUND"))
		assert.Empty(t, f.store.transactions)
		assert.Empty(t, f.store.auditLogs)
	})
}

func TestCreateMovementExport(t *testing.T) {
	t.Run("pinned export drains the row and removes it at zero", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(5), 0)
		f.seedStock(t, product.ID, loc.ID, 20)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 20, UnitPrice: decimal.NewFromInt(5)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)

		_, ok := f.stockAt(product.ID, loc.ID)
		assert.False(t, ok, "drained row must be removed")
		assert.Equal(t, int64(0), f.productStock(product.ID))
		assert.Equal(t, 1, f.auditCount("inventories", ledger.AuditActionDelete))
	})

	t.Run("unpinned export splits across locations in code order", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		locA := f.seedLocation(t, wh.ID, "A-01-01")
		locB := f.seedLocation(t, wh.ID, "A-01-02")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(2), 0)
		f.seedStock(t, product.ID, locA.ID, 20)
		f.seedStock(t, product.ID, locB.ID, 10)

		result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type:        ledger.TransactionTypeExport,
			WarehouseID: &wh.ID,
			Lines: []MovementLine{
				{ProductID: product.ID, Quantity: 25, UnitPrice: decimal.NewFromInt(2)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)

		_, okA := f.stockAt(product.ID, locA.ID)
		assert.False(t, okA, "first location fully drained")
		qtyB, _ := f.stockAt(product.ID, locB.ID)
		assert.Equal(t, int64(5), qtyB)
		assert.Equal(t, int64(5), f.productStock(product.ID))

		tx := f.store.transactions[result.TransactionID]
		require.Len(t, tx.Details, 2)
		assert.Equal(t, int64(20), tx.Details[0].Quantity)
		assert.Equal(t, locA.ID, *tx.Details[0].LocationID)
		assert.Equal(t, int64(5), tx.Details[1].Quantity)
		assert.Equal(t, locB.ID, *tx.Details[1].LocationID)
		assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("insufficient stock fails the whole movement", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		locA := f.seedLocation(t, wh.ID, "A-01-01")
		locB := f.seedLocation(t, wh.ID, "A-01-02")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(2), 0)
		other := f.seedProduct(t, "SKU-002", decimal.NewFromInt(3), 0)
		f.seedStock(t, product.ID, locA.ID, 15)
		f.seedStock(t, other.ID, locB.ID, 40)

		// Second line cannot be covered; the first line's deduction must
		// roll back with it.
		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: other.ID, LocationID: &locB.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(3)},
				{ProductID: product.ID, Quantity: 30, UnitPrice: decimal.NewFromInt(2)},
			},
			CreatedBy: "tester",
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "INSUFFICIENT_STOCK"))
		assert.Contains(t, err.Error(), "available=15")

		qtyB, _ := f.stockAt(other.ID, locB.ID)
		assert.Equal(t, int64(40), qtyB, "first line must roll back")
		assert.Equal(t, int64(15), f.productStock(product.ID))
		assert.Equal(t, int64(40), f.productStock(other.ID))
		assert.Empty(t, f.store.transactions)
		assert.Empty(t, f.store.auditLogs)
	})

	t.Run("rejects an unpinned export of an unknown product", func(t *testing.T) {
		f := newFixture()
		f.seedWarehouse(t)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: uuid.New(), Quantity: 5, UnitPrice: decimal.NewFromInt(2)},
			},
			CreatedBy: "tester",
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "PRODUCT_NOT_FOUND"))
		assert.Empty(t, f.store.transactions)
	})

	t.Run("signals products that fell below their minimum", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(2), 10)
		f.seedStock(t, product.ID, loc.ID, 12)

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(2)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"SKU-001"}, f.notifier.lowStock)
	})
}

// lockedScope serializes Execute the way the database's row lock does:
// the second movement only sees stock after the first has committed.
type lockedScope struct {
	mu    sync.Mutex
	inner *memScope
}

func (s *lockedScope) Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Execute(ctx, fn)
}

func TestCreateMovementExportContention(t *testing.T) {
	t.Run("two exports racing for one row admit exactly one", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(5), 0)
		f.seedStock(t, product.ID, loc.ID, 100)

		scope := &lockedScope{inner: f.scope}
		movement := NewMovementService(scope, f.notifier, RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}, nil)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := movement.CreateMovement(context.Background(), CreateMovementInput{
					Type: ledger.TransactionTypeExport,
					Lines: []MovementLine{
						{ProductID: product.ID, LocationID: &loc.ID, Quantity: 60, UnitPrice: decimal.NewFromInt(2)},
					},
					CreatedBy: "tester",
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var rejected int
		for err := range errs {
			if err != nil {
				rejected++
				assert.True(t, shared.IsDomainError(err, "INSUFFICIENT_STOCK"))
			}
		}
		assert.Equal(t, 1, rejected, "exactly one export must be rejected")

		qty, ok := f.stockAt(product.ID, loc.ID)
		require.True(t, ok)
		assert.Equal(t, int64(40), qty)
		assert.Equal(t, int64(40), f.productStock(product.ID))
		assert.Len(t, f.store.transactions, 1)
	})
}

func TestCreateMovementDeferred(t *testing.T) {
	f := newFixture()
	wh := f.seedWarehouse(t)
	loc := f.seedLocation(t, wh.ID, "A-01-01")
	product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(4), 0)

	result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
		Type: ledger.TransactionTypeImport,
		Lines: []MovementLine{
			{ProductID: product.ID, LocationID: &loc.ID, Quantity: 30, UnitPrice: decimal.NewFromInt(4)},
		},
		Deferred:  true,
		CreatedBy: "tester",
	})
	require.NoError(t, err)

	assert.Equal(t, ledger.TransactionStatusPending, result.Status)
	require.Len(t, result.TaskIDs, 1)

	// No stock moves until the task executes.
	_, ok := f.stockAt(product.ID, loc.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(0), f.productStock(product.ID))

	task := f.store.tasks[result.TaskIDs[0]]
	assert.True(t, task.IsPending())
	assert.Equal(t, int64(30), task.Quantity)
	require.NotNil(t, task.TransactionID)
	assert.Equal(t, result.TransactionID, *task.TransactionID)
	assert.Equal(t, 1, f.auditCount("warehouse_tasks", ledger.AuditActionCreate))
}

func TestCreateMovementValidation(t *testing.T) {
	f := newFixture()
	product := uuid.New()

	cases := []struct {
		name  string
		input CreateMovementInput
	}{
		{"no lines", CreateMovementInput{Type: ledger.TransactionTypeImport}},
		{"transfer type rejected", CreateMovementInput{
			Type:  ledger.TransactionTypeTransfer,
			Lines: []MovementLine{{ProductID: product, Quantity: 1}},
		}},
		{"zero quantity", CreateMovementInput{
			Type:  ledger.TransactionTypeExport,
			Lines: []MovementLine{{ProductID: product, Quantity: 0}},
		}},
		{"import without location", CreateMovementInput{
			Type:  ledger.TransactionTypeImport,
			Lines: []MovementLine{{ProductID: product, Quantity: 5}},
		}},
		{"negative paid amount", CreateMovementInput{
			Type:       ledger.TransactionTypeExport,
			Lines:      []MovementLine{{ProductID: product, Quantity: 5}},
			AmountPaid: decimal.NewFromInt(-1),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.movement.CreateMovement(context.Background(), tc.input)
			require.Error(t, err)
			assert.True(t, shared.IsDomainError(err, "INVALID_REQUEST"))
		})
	}
	assert.Zero(t, f.scope.executions, "validation must fail before any store access")
}

func TestCreateMovementRetry(t *testing.T) {
	t.Run("retries transient failures and succeeds", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(1), 0)
		f.scope.transientFailures = 2

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeImport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(1)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, f.scope.executions)
		assert.Equal(t, int64(5), f.productStock(product.ID))
	})

	t.Run("gives up after the retry bound", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(1), 0)
		f.scope.transientFailures = 10

		_, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeImport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(1)},
			},
			CreatedBy: "tester",
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "INTERNAL"))
		assert.Equal(t, 3, f.scope.executions)
		assert.Equal(t, int64(0), f.productStock(product.ID))
	})
}

func TestTransfer(t *testing.T) {
	t.Run("moves stock without changing the aggregate", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		from := f.seedLocation(t, wh.ID, "A-01-01")
		to := f.seedLocation(t, wh.ID, "B-02-03")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(7), 0)
		f.seedStock(t, product.ID, from.ID, 30)

		result, err := f.movement.Transfer(context.Background(), TransferInput{
			ProductID:      product.ID,
			FromLocationID: from.ID,
			ToLocationID:   to.ID,
			Quantity:       12,
			CreatedBy:      "tester",
		})
		require.NoError(t, err)

		fromQty, _ := f.stockAt(product.ID, from.ID)
		toQty, _ := f.stockAt(product.ID, to.ID)
		assert.Equal(t, int64(18), fromQty)
		assert.Equal(t, int64(12), toQty)
		assert.Equal(t, int64(30), f.productStock(product.ID), "transfer must not change the aggregate")

		tx := f.store.transactions[result.TransactionID]
		assert.Equal(t, ledger.TransactionTypeTransfer, tx.Type)
		require.Len(t, tx.Details, 1)
	})

	t.Run("drained source row is removed", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		from := f.seedLocation(t, wh.ID, "A-01-01")
		to := f.seedLocation(t, wh.ID, "B-02-03")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(7), 0)
		f.seedStock(t, product.ID, from.ID, 30)

		_, err := f.movement.Transfer(context.Background(), TransferInput{
			ProductID:      product.ID,
			FromLocationID: from.ID,
			ToLocationID:   to.ID,
			Quantity:       30,
			CreatedBy:      "tester",
		})
		require.NoError(t, err)

		_, ok := f.stockAt(product.ID, from.ID)
		assert.False(t, ok)
		toQty, _ := f.stockAt(product.ID, to.ID)
		assert.Equal(t, int64(30), toQty)
		assert.Equal(t, 1, f.auditCount("inventories", ledger.AuditActionDelete))
	})

	t.Run("rejects identical source and destination", func(t *testing.T) {
		f := newFixture()
		loc := uuid.New()
		_, err := f.movement.Transfer(context.Background(), TransferInput{
			ProductID:      uuid.New(),
			FromLocationID: loc,
			ToLocationID:   loc,
			Quantity:       5,
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "INVALID_REQUEST"))
	})

	t.Run("fails when the source cannot cover the quantity", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		from := f.seedLocation(t, wh.ID, "A-01-01")
		to := f.seedLocation(t, wh.ID, "B-02-03")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(7), 0)
		f.seedStock(t, product.ID, from.ID, 5)

		_, err := f.movement.Transfer(context.Background(), TransferInput{
			ProductID:      product.ID,
			FromLocationID: from.ID,
			ToLocationID:   to.ID,
			Quantity:       10,
			CreatedBy:      "tester",
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "INSUFFICIENT_STOCK"))
		fromQty, _ := f.stockAt(product.ID, from.ID)
		assert.Equal(t, int64(5), fromQty)
	})
}

func TestUpdateStatus(t *testing.T) {
	exportMovement := func(f *fixture, t *testing.T) (uuid.UUID, *catalog.Product, *warehouse.Location) {
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(3), 0)
		f.seedStock(t, product.ID, loc.ID, 40)

		result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 15, UnitPrice: decimal.NewFromInt(3)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)
		return result.TransactionID, product, loc
	}

	t.Run("cancelling a completed export restores rows and aggregate", func(t *testing.T) {
		f := newFixture()
		txID, product, loc := exportMovement(f, t)
		require.Equal(t, int64(25), f.productStock(product.ID))

		require.NoError(t, f.movement.UpdateStatus(context.Background(), txID, ledger.TransactionStatusCancelled))

		qty, _ := f.stockAt(product.ID, loc.ID)
		assert.Equal(t, int64(40), qty, "location row must be restored")
		assert.Equal(t, int64(40), f.productStock(product.ID))
		assert.Equal(t, ledger.TransactionStatusCancelled, f.store.transactions[txID].Status)
	})

	t.Run("restores a row the export had removed", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(3), 0)
		f.seedStock(t, product.ID, loc.ID, 15)

		result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeExport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 15, UnitPrice: decimal.NewFromInt(3)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)
		_, ok := f.stockAt(product.ID, loc.ID)
		require.False(t, ok)

		require.NoError(t, f.movement.UpdateStatus(context.Background(), result.TransactionID, ledger.TransactionStatusCancelled))
		qty, ok := f.stockAt(product.ID, loc.ID)
		require.True(t, ok, "removed row must be recreated")
		assert.Equal(t, int64(15), qty)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		f := newFixture()
		txID, _, _ := exportMovement(f, t)
		require.NoError(t, f.movement.UpdateStatus(context.Background(), txID, ledger.TransactionStatusCancelled))

		err := f.movement.UpdateStatus(context.Background(), txID, ledger.TransactionStatusCancelled)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, "ALREADY_CANCELLED"))
	})

	t.Run("cancelling an import does not touch stock", func(t *testing.T) {
		f := newFixture()
		wh := f.seedWarehouse(t)
		loc := f.seedLocation(t, wh.ID, "A-01-01")
		product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(3), 0)

		result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
			Type: ledger.TransactionTypeImport,
			Lines: []MovementLine{
				{ProductID: product.ID, LocationID: &loc.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(3)},
			},
			CreatedBy: "tester",
		})
		require.NoError(t, err)

		require.NoError(t, f.movement.UpdateStatus(context.Background(), result.TransactionID, ledger.TransactionStatusCancelled))
		assert.Equal(t, int64(10), f.productStock(product.ID))
	})

	t.Run("unknown transaction fails", func(t *testing.T) {
		f := newFixture()
		err := f.movement.UpdateStatus(context.Background(), uuid.New(), ledger.TransactionStatusCancelled)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCreateMovementNotify(t *testing.T) {
	f := newFixture()
	wh := f.seedWarehouse(t)
	loc := f.seedLocation(t, wh.ID, "A-01-01")
	product := f.seedProduct(t, "SKU-001", decimal.NewFromInt(1), 0)

	result, err := f.movement.CreateMovement(context.Background(), CreateMovementInput{
		Type: ledger.TransactionTypeImport,
		Lines: []MovementLine{
			{ProductID: product.ID, LocationID: &loc.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(1)},
		},
		Notify:    true,
		CreatedBy: "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{result.TransactionID}, f.notifier.transactions)
}
