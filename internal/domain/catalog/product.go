package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// Product is the aggregate root for the product catalog. StockQuantity is the
// denormalized sum of all inventory rows for the product and is mutated only
// through the ledger's movement processing, never directly by callers.
type Product struct {
	shared.BaseEntity
	SKU           string          `gorm:"size:64;not null;uniqueIndex"`
	Name          string          `gorm:"size:255;not null"`
	Category      string          `gorm:"size:128"`
	Unit          string          `gorm:"size:32;not null;default:PCS"`
	Price         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity int64           `gorm:"not null;default:0"`
	MinStockLevel int64           `gorm:"not null;default:0"`
	ImageURL      string          `gorm:"size:512"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name, unit string, price decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Product price cannot be negative")
	}
	if unit == "" {
		unit = "PCS"
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Unit:       unit,
		Price:      price,
	}, nil
}

// IncreaseStock increases the aggregate stock counter
func (p *Product) IncreaseStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Quantity must be positive")
	}
	p.StockQuantity += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// DecreaseStock decreases the aggregate stock counter. The counter can never
// go negative; callers see the current quantity in the error message.
func (p *Product) DecreaseStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Quantity must be positive")
	}
	if p.StockQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: available=%d, requested=%d", p.SKU, p.StockQuantity, quantity))
	}
	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

// IsBelowMinimum returns true if the aggregate quantity is below the reorder threshold
func (p *Product) IsBelowMinimum() bool {
	return p.MinStockLevel > 0 && p.StockQuantity < p.MinStockLevel
}

// AuditValues returns the auditable field snapshot of the product
func (p *Product) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"SKU":           p.SKU,
		"Name":          p.Name,
		"Unit":          p.Unit,
		"Price":         p.Price.String(),
		"StockQuantity": p.StockQuantity,
		"MinStockLevel": p.MinStockLevel,
	}
}

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate loads the product with a row lock so the aggregate
	// counter is serialized per product for the duration of the unit of work.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindBelowMinimum(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}
