package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// Inventory is the per-(product, location) stock row. It is created lazily on
// the first receipt into a location and removed when the quantity returns to
// zero. Quantity never goes negative; concurrent movements against the same
// row are serialized by the store's row lock for the duration of a unit of
// work.
type Inventory struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location,priority:1"`
	LocationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location,priority:2"`
	Quantity    int64     `gorm:"not null;default:0"`
	LastUpdated time.Time
}

// TableName returns the table name for GORM
func (Inventory) TableName() string {
	return "inventories"
}

// NewInventory creates an empty stock row for a product at a location
func NewInventory(productID, locationID uuid.UUID) (*Inventory, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Product ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Location ID cannot be empty")
	}
	return &Inventory{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		LocationID:  locationID,
		LastUpdated: time.Now(),
	}, nil
}

// Increase adds received stock to the row
func (i *Inventory) Increase(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Quantity must be positive")
	}
	i.Quantity += quantity
	i.LastUpdated = time.Now()
	i.UpdatedAt = i.LastUpdated
	return nil
}

// Decrease removes shipped stock from the row. The row can never go negative;
// the error carries the currently available quantity.
func (i *Inventory) Decrease(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Quantity must be positive")
	}
	if i.Quantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock at location: available=%d, requested=%d", i.Quantity, quantity))
	}
	i.Quantity -= quantity
	i.LastUpdated = time.Now()
	i.UpdatedAt = i.LastUpdated
	return nil
}

// IsEmpty returns true when the row holds no stock and should be removed
func (i *Inventory) IsEmpty() bool {
	return i.Quantity == 0
}

// CanFulfill returns true if the row holds at least the requested quantity
func (i *Inventory) CanFulfill(quantity int64) bool {
	return i.Quantity >= quantity
}

// AuditValues returns the auditable field snapshot of the stock row
func (i *Inventory) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"ProductID":  i.ProductID.String(),
		"LocationID": i.LocationID.String(),
		"Quantity":   i.Quantity,
	}
}
