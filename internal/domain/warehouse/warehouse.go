package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// Warehouse is a physical site holding storage locations
type Warehouse struct {
	shared.BaseEntity
	Name    string `gorm:"size:255;not null"`
	Address string `gorm:"size:512"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(name, address string) (*Warehouse, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Warehouse name cannot be empty")
	}
	return &Warehouse{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Address:    address,
	}, nil
}

// WarehouseRepository provides access to warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindAll(ctx context.Context) ([]Warehouse, error)
	Save(ctx context.Context, wh *Warehouse) error
}
