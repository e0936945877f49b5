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

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindForUpdate loads one stock row under a row lock. Two movements that
// touch the same (product, location) pair serialize here.
func (r *GormInventoryRepository) FindForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*ledger.Inventory, error) {
	var inv ledger.Inventory
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// candidateRow is the scan target for the allocation candidate join
type candidateRow struct {
	InventoryID  uuid.UUID
	LocationID   uuid.UUID
	LocationCode string
	Available    int64
}

// FindCandidatesForUpdate locks every positive stock row of a product,
// joined with its location code and ordered by it, which fixes both the
// allocator's input order and the lock acquisition order.
func (r *GormInventoryRepository) FindCandidatesForUpdate(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) ([]ledger.AllocationCandidate, error) {
	query := r.db.WithContext(ctx).
		Table("inventories").
		Select("inventories.id AS inventory_id, inventories.location_id, locations.code AS location_code, inventories.quantity AS available").
		Joins("JOIN locations ON locations.id = inventories.location_id").
		Where("inventories.product_id = ? AND inventories.quantity > 0", productID).
		Order("locations.code ASC").
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "inventories"}})
	if warehouseID != nil {
		query = query.Where("locations.warehouse_id = ?", *warehouseID)
	}

	var rows []candidateRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	candidates := make([]ledger.AllocationCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, ledger.AllocationCandidate{
			InventoryID:  row.InventoryID,
			LocationID:   row.LocationID,
			LocationCode: row.LocationCode,
			Available:    row.Available,
		})
	}
	return candidates, nil
}

// FindByProduct returns a product's stock rows across all locations
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]ledger.Inventory, error) {
	var rows []ledger.Inventory
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// reportQuery builds the stock report join with the filter applied
func (r *GormInventoryRepository) reportQuery(ctx context.Context, filter ledger.StockReportFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("inventories").
		Joins("JOIN products ON products.id = inventories.product_id").
		Joins("JOIN locations ON locations.id = inventories.location_id").
		Joins("JOIN warehouses ON warehouses.id = locations.warehouse_id")
	if filter.WarehouseID != nil {
		query = query.Where("locations.warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.SKU != "" {
		query = query.Where("products.sku = ?", filter.SKU)
	}
	return query
}

// FindReport pages the stock-on-hand report, ordered by SKU then location code
func (r *GormInventoryRepository) FindReport(ctx context.Context, filter ledger.StockReportFilter) (shared.Paginated[ledger.StockReportRow], error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var total int64
	if err := r.reportQuery(ctx, filter).Count(&total).Error; err != nil {
		return shared.Paginated[ledger.StockReportRow]{}, err
	}

	var rows []ledger.StockReportRow
	if err := r.reportQuery(ctx, filter).
		Select("inventories.product_id, products.sku, products.name AS product_name, locations.warehouse_id, warehouses.name AS warehouse_name, inventories.location_id, locations.code AS location_code, inventories.quantity").
		Order("products.sku ASC, locations.code ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&rows).Error; err != nil {
		return shared.Paginated[ledger.StockReportRow]{}, err
	}
	return shared.NewPaginated(rows, total, page, pageSize), nil
}

// CountByLocation counts stock rows referencing a location
func (r *GormInventoryRepository) CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Inventory{}).
		Where("location_id = ?", locationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock row
func (r *GormInventoryRepository) Save(ctx context.Context, inv *ledger.Inventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// Delete removes a stock row
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ledger.Inventory{}, "id = ?", id).Error
}

var _ ledger.InventoryRepository = (*GormInventoryRepository)(nil)
