package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"github.com/warehousepro/backend/internal/domain/warehouse"
)

// CreateLocationInput describes a new storage slot inside a warehouse
type CreateLocationInput struct {
	WarehouseID uuid.UUID
	Code        string
	Zone        string
	Shelf       string
	Level       string
}

// TopologyService manages the warehouse and location layout. Layout changes
// run through the ledger unit of work so each of them lands in the audit
// trail together with its commit.
type TopologyService struct {
	scope appledger.LedgerScope
}

// NewTopologyService creates a topology service
func NewTopologyService(scope appledger.LedgerScope) *TopologyService {
	return &TopologyService{scope: scope}
}

// CreateWarehouse registers a new physical site
func (s *TopologyService) CreateWarehouse(ctx context.Context, name, address string) (*warehouse.Warehouse, error) {
	wh, err := warehouse.NewWarehouse(name, address)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		if err := repos.Warehouses().Save(ctx, wh); err != nil {
			return err
		}
		repos.Changes().RecordCreate(wh.TableName(), wh.ID, map[string]interface{}{
			"Name":    wh.Name,
			"Address": wh.Address,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wh, nil
}

// Warehouses returns all registered sites
func (s *TopologyService) Warehouses(ctx context.Context) ([]warehouse.Warehouse, error) {
	var warehouses []warehouse.Warehouse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		var err error
		warehouses, err = repos.Warehouses().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return warehouses, nil
}

// CreateLocation adds a storage slot to an existing warehouse
func (s *TopologyService) CreateLocation(ctx context.Context, input CreateLocationInput) (*warehouse.Location, error) {
	loc, err := warehouse.NewLocation(input.WarehouseID, input.Code, input.Zone, input.Shelf, input.Level)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		if _, err := repos.Warehouses().FindByID(ctx, input.WarehouseID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("WAREHOUSE_NOT_FOUND", fmt.Sprintf("Warehouse %s not found", input.WarehouseID))
			}
			return err
		}
		if err := repos.Locations().Save(ctx, loc); err != nil {
			return err
		}
		repos.Changes().RecordCreate(loc.TableName(), loc.ID, locationAuditValues(loc))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// LocationsByWarehouse returns a warehouse's locations ordered by code
func (s *TopologyService) LocationsByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]warehouse.Location, error) {
	var locations []warehouse.Location
	err := s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		var err error
		locations, err = repos.Locations().FindByWarehouse(ctx, warehouseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// DeleteLocation removes an empty storage slot. The delete is refused while
// any stock row still references the location.
func (s *TopologyService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		loc, err := repos.Locations().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("LOCATION_NOT_FOUND", fmt.Sprintf("Location %s not found", id))
			}
			return err
		}
		if err := repos.Locations().Delete(ctx, id); err != nil {
			return err
		}
		repos.Changes().RecordDelete(loc.TableName(), loc.ID, locationAuditValues(loc))
		return nil
	})
}

func locationAuditValues(loc *warehouse.Location) map[string]interface{} {
	return map[string]interface{}{
		"WarehouseID": loc.WarehouseID.String(),
		"Code":        loc.Code,
		"Zone":        loc.Zone,
		"Shelf":       loc.Shelf,
		"Level":       loc.Level,
	}
}
