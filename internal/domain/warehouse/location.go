package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// Location is a storage slot within a warehouse, identified to operators by
// its human-readable code (e.g. "A-01-01"). A location is immutable once
// stock references it and may be deleted only when all of its stock rows
// are gone.
type Location struct {
	shared.BaseEntity
	Code        string    `gorm:"size:64;not null;uniqueIndex:idx_location_warehouse_code,priority:2"`
	Zone        string    `gorm:"size:64"`
	Shelf       string    `gorm:"size:64"`
	Level       string    `gorm:"size:64"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_warehouse_code,priority:1"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new location inside a warehouse
func NewLocation(warehouseID uuid.UUID, code, zone, shelf, level string) (*Location, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Warehouse ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Location code cannot be empty")
	}
	return &Location{
		BaseEntity:  shared.NewBaseEntity(),
		Code:        code,
		Zone:        zone,
		Shelf:       shelf,
		Level:       level,
		WarehouseID: warehouseID,
	}, nil
}

// LocationRepository provides access to storage locations
type LocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Location, error)
	Save(ctx context.Context, loc *Location) error
	// Delete removes a location. Implementations must refuse the delete while
	// any stock row still references the location.
	Delete(ctx context.Context, id uuid.UUID) error
}
