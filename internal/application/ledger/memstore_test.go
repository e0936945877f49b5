package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/catalog"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/partner"
	"github.com/warehousepro/backend/internal/domain/shared"
	"github.com/warehousepro/backend/internal/domain/warehouse"
)

// memStore is an in-memory stand-in for the persistence layer. Execute
// clones the whole store, runs the unit of work against the clone and swaps
// it in only on success, which gives the tests real rollback semantics.
type memStore struct {
	products     map[uuid.UUID]catalog.Product
	partners     map[uuid.UUID]partner.Partner
	payments     map[uuid.UUID]partner.Payment
	warehouses   map[uuid.UUID]warehouse.Warehouse
	locations    map[uuid.UUID]warehouse.Location
	inventories  map[uuid.UUID]ledger.Inventory
	transactions map[uuid.UUID]ledger.StockTransaction
	tasks        map[uuid.UUID]ledger.WarehouseTask
	auditLogs    []ledger.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		products:     make(map[uuid.UUID]catalog.Product),
		partners:     make(map[uuid.UUID]partner.Partner),
		payments:     make(map[uuid.UUID]partner.Payment),
		warehouses:   make(map[uuid.UUID]warehouse.Warehouse),
		locations:    make(map[uuid.UUID]warehouse.Location),
		inventories:  make(map[uuid.UUID]ledger.Inventory),
		transactions: make(map[uuid.UUID]ledger.StockTransaction),
		tasks:        make(map[uuid.UUID]ledger.WarehouseTask),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.partners {
		c.partners[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.inventories {
		c.inventories[k] = v
	}
	for k, v := range s.transactions {
		v.Details = append([]ledger.TransactionDetail(nil), v.Details...)
		c.transactions[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	c.auditLogs = append([]ledger.AuditLog(nil), s.auditLogs...)
	return c
}

// memScope implements LedgerScope over a memStore. transientFailures > 0
// makes the next Executes fail with a retryable error before touching state.
type memScope struct {
	store             *memStore
	transientFailures int
	executions        int
}

func newMemScope(store *memStore) *memScope {
	return &memScope{store: store}
}

func (m *memScope) Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.executions++
	if m.transientFailures > 0 {
		m.transientFailures--
		return &TransientError{Err: errors.New("serialization conflict")}
	}
	work := m.store.clone()
	repos := &memRepos{store: work, changes: ledger.NewChangeSet()}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	flushChanges(work, repos.changes)
	// Commit in place: the fixture keeps reading through the same pointer.
	*m.store = *work
	return nil
}

// flushChanges mirrors the persistence layer's audit flush: one audit row
// per recorded change, inventory deletions flagged as suspicious.
func flushChanges(store *memStore, changes *ledger.ChangeSet) {
	for _, ch := range changes.Changes() {
		log := ledger.AuditLog{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     "test",
			Action:     ch.Action,
			TableName_: ch.Table,
			RecordID:   recordKey(ch.Key),
		}
		if ch.Old != nil {
			old := mustJSON(ch.Old)
			log.OldValues = &old
		}
		if ch.New != nil {
			updated := mustJSON(ch.New)
			log.NewValues = &updated
		}
		if ch.Table == (ledger.Inventory{}).TableName() && ch.Action == ledger.AuditActionDelete {
			log.IsSuspicious = true
			note := "inventory row removed"
			log.RiskNote = &note
		}
		store.auditLogs = append(store.auditLogs, log)
	}
}

func recordKey(key map[string]interface{}) string {
	if id, ok := key["ID"].(string); ok {
		return id
	}
	return ""
}

func mustJSON(v map[string]interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

type memRepos struct {
	store   *memStore
	changes *ledger.ChangeSet
}

func (r *memRepos) Products() catalog.ProductRepository        { return &memProducts{r.store} }
func (r *memRepos) Partners() partner.PartnerRepository        { return &memPartners{r.store} }
func (r *memRepos) Payments() partner.PaymentRepository        { return &memPayments{r.store} }
func (r *memRepos) Warehouses() warehouse.WarehouseRepository  { return &memWarehouses{r.store} }
func (r *memRepos) Locations() warehouse.LocationRepository    { return &memLocations{r.store} }
func (r *memRepos) Inventories() ledger.InventoryRepository    { return &memInventories{r.store} }
func (r *memRepos) Transactions() ledger.TransactionRepository { return &memTransactions{r.store} }
func (r *memRepos) Tasks() ledger.WarehouseTaskRepository      { return &memTasks{r.store} }
func (r *memRepos) Changes() *ledger.ChangeSet                 { return r.changes }

type memProducts struct{ store *memStore }

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memProducts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProducts) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			found := p
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProducts) FindBelowMinimum(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok && p.IsBelowMinimum() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) Save(_ context.Context, product *catalog.Product) error {
	r.store.products[product.ID] = *product
	return nil
}

type memPartners struct{ store *memStore }

func (r *memPartners) FindByID(_ context.Context, id uuid.UUID) (*partner.Partner, error) {
	p, ok := r.store.partners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memPartners) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	return r.FindByID(ctx, id)
}

func (r *memPartners) Save(_ context.Context, p *partner.Partner) error {
	r.store.partners[p.ID] = *p
	return nil
}

type memPayments struct{ store *memStore }

func (r *memPayments) Create(_ context.Context, payment *partner.Payment) error {
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *memPayments) FindByPartner(_ context.Context, partnerID uuid.UUID) ([]partner.Payment, error) {
	var out []partner.Payment
	for _, p := range r.store.payments {
		if p.PartnerID == partnerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memWarehouses struct{ store *memStore }

func (r *memWarehouses) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	wh, ok := r.store.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &wh, nil
}

func (r *memWarehouses) FindAll(_ context.Context) ([]warehouse.Warehouse, error) {
	var out []warehouse.Warehouse
	for _, wh := range r.store.warehouses {
		out = append(out, wh)
	}
	return out, nil
}

func (r *memWarehouses) Save(_ context.Context, wh *warehouse.Warehouse) error {
	r.store.warehouses[wh.ID] = *wh
	return nil
}

type memLocations struct{ store *memStore }

func (r *memLocations) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Location, error) {
	loc, ok := r.store.locations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &loc, nil
}

func (r *memLocations) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]warehouse.Location, error) {
	var out []warehouse.Location
	for _, loc := range r.store.locations {
		if loc.WarehouseID == warehouseID {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (r *memLocations) Save(_ context.Context, loc *warehouse.Location) error {
	r.store.locations[loc.ID] = *loc
	return nil
}

func (r *memLocations) Delete(_ context.Context, id uuid.UUID) error {
	for _, inv := range r.store.inventories {
		if inv.LocationID == id {
			return shared.NewDomainError("INVALID_STATE", "Location still holds stock")
		}
	}
	delete(r.store.locations, id)
	return nil
}

type memInventories struct{ store *memStore }

func (r *memInventories) FindForUpdate(_ context.Context, productID, locationID uuid.UUID) (*ledger.Inventory, error) {
	for _, inv := range r.store.inventories {
		if inv.ProductID == productID && inv.LocationID == locationID {
			found := inv
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInventories) FindCandidatesForUpdate(_ context.Context, productID uuid.UUID, warehouseID *uuid.UUID) ([]ledger.AllocationCandidate, error) {
	var out []ledger.AllocationCandidate
	for _, inv := range r.store.inventories {
		if inv.ProductID != productID || inv.Quantity <= 0 {
			continue
		}
		loc, ok := r.store.locations[inv.LocationID]
		if !ok {
			continue
		}
		if warehouseID != nil && loc.WarehouseID != *warehouseID {
			continue
		}
		out = append(out, ledger.AllocationCandidate{
			InventoryID:  inv.ID,
			LocationID:   inv.LocationID,
			LocationCode: loc.Code,
			Available:    inv.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].LocationCode, out[j].LocationCode) < 0
	})
	return out, nil
}

func (r *memInventories) FindByProduct(_ context.Context, productID uuid.UUID) ([]ledger.Inventory, error) {
	var out []ledger.Inventory
	for _, inv := range r.store.inventories {
		if inv.ProductID == productID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInventories) FindReport(_ context.Context, filter ledger.StockReportFilter) (shared.Paginated[ledger.StockReportRow], error) {
	var rows []ledger.StockReportRow
	for _, inv := range r.store.inventories {
		p, ok := r.store.products[inv.ProductID]
		if !ok {
			continue
		}
		loc, ok := r.store.locations[inv.LocationID]
		if !ok {
			continue
		}
		if filter.WarehouseID != nil && loc.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.SKU != "" && p.SKU != filter.SKU {
			continue
		}
		wh := r.store.warehouses[loc.WarehouseID]
		rows = append(rows, ledger.StockReportRow{
			ProductID:     inv.ProductID,
			SKU:           p.SKU,
			ProductName:   p.Name,
			WarehouseID:   loc.WarehouseID,
			WarehouseName: wh.Name,
			LocationID:    inv.LocationID,
			LocationCode:  loc.Code,
			Quantity:      inv.Quantity,
		})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].SKU != rows[b].SKU {
			return rows[a].SKU < rows[b].SKU
		}
		return rows[a].LocationCode < rows[b].LocationCode
	})

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	total := int64(len(rows))
	start := (page - 1) * pageSize
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return shared.NewPaginated(rows[start:end], total, page, pageSize), nil
}

func (r *memInventories) CountByLocation(_ context.Context, locationID uuid.UUID) (int64, error) {
	var n int64
	for _, inv := range r.store.inventories {
		if inv.LocationID == locationID {
			n++
		}
	}
	return n, nil
}

func (r *memInventories) Save(_ context.Context, inv *ledger.Inventory) error {
	r.store.inventories[inv.ID] = *inv
	return nil
}

func (r *memInventories) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.inventories, id)
	return nil
}

type memTransactions struct{ store *memStore }

func (r *memTransactions) Create(_ context.Context, tx *ledger.StockTransaction) error {
	stored := *tx
	stored.Details = append([]ledger.TransactionDetail(nil), tx.Details...)
	r.store.transactions[tx.ID] = stored
	return nil
}

func (r *memTransactions) FindByID(_ context.Context, id uuid.UUID) (*ledger.StockTransaction, error) {
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	tx.Details = append([]ledger.TransactionDetail(nil), tx.Details...)
	return &tx, nil
}

func (r *memTransactions) FindByPartner(_ context.Context, partnerID uuid.UUID, limit int) ([]ledger.StockTransaction, error) {
	var out []ledger.StockTransaction
	for _, tx := range r.store.transactions {
		if tx.PartnerID != nil && *tx.PartnerID == partnerID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactions) FindRecent(_ context.Context, limit int) ([]ledger.StockTransaction, error) {
	var out []ledger.StockTransaction
	for _, tx := range r.store.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactions) FindDetailsByProduct(_ context.Context, productID uuid.UUID, limit int) ([]ledger.TransactionDetail, error) {
	var out []ledger.TransactionDetail
	for _, tx := range r.store.transactions {
		for _, d := range tx.Details {
			if d.ProductID == productID {
				out = append(out, d)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactions) Save(_ context.Context, tx *ledger.StockTransaction) error {
	stored := *tx
	stored.Details = append([]ledger.TransactionDetail(nil), tx.Details...)
	r.store.transactions[tx.ID] = stored
	return nil
}

type memTasks struct{ store *memStore }

func (r *memTasks) Create(_ context.Context, task *ledger.WarehouseTask) error {
	r.store.tasks[task.ID] = *task
	return nil
}

func (r *memTasks) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*ledger.WarehouseTask, error) {
	task, ok := r.store.tasks[id]
	if !ok {
		return nil, shared.ErrTaskNotFound
	}
	return &task, nil
}

func (r *memTasks) FindPendingByLocation(_ context.Context, locationID uuid.UUID) ([]ledger.WarehouseTask, error) {
	var out []ledger.WarehouseTask
	for _, t := range r.store.tasks {
		if t.LocationID == locationID && t.IsPending() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTasks) CountPendingSiblings(_ context.Context, transactionID, excludeTaskID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.store.tasks {
		if t.TransactionID != nil && *t.TransactionID == transactionID && t.ID != excludeTaskID && t.IsPending() {
			n++
		}
	}
	return n, nil
}

func (r *memTasks) Save(_ context.Context, task *ledger.WarehouseTask) error {
	r.store.tasks[task.ID] = *task
	return nil
}

// recordingNotifier captures signals for assertions
type recordingNotifier struct {
	transactions []uuid.UUID
	lowStock     []string
}

func (n *recordingNotifier) TransactionCreated(_ context.Context, id uuid.UUID, _ decimal.Decimal) {
	n.transactions = append(n.transactions, id)
}

func (n *recordingNotifier) StockBelowMinimum(_ context.Context, _ uuid.UUID, sku string, _, _ int64) {
	n.lowStock = append(n.lowStock, sku)
}
