package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// AllocationCandidate is a stock row a draw plan may pull from. Candidates
// must be loaded under the same unit of work as the deduction they feed, so
// the plan cannot race a concurrent exporter.
type AllocationCandidate struct {
	InventoryID  uuid.UUID
	LocationID   uuid.UUID
	LocationCode string
	Available    int64
}

// Draw is one (location, quantity) slice of an allocation plan
type Draw struct {
	InventoryID uuid.UUID
	LocationID  uuid.UUID
	Quantity    int64
}

// PlanAllocation selects which stock rows to draw from for an export that
// does not pin a location. Candidates are ordered by location code ascending
// so the plan is reproducible, then drained greedily until the requested
// quantity is covered. Planning is pure: no candidate is mutated, and an
// insufficient total fails the whole plan.
func PlanAllocation(candidates []AllocationCandidate, quantity int64) ([]Draw, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Allocation quantity must be positive")
	}

	ordered := make([]AllocationCandidate, 0, len(candidates))
	var total int64
	for _, c := range candidates {
		if c.Available <= 0 {
			continue
		}
		ordered = append(ordered, c)
		total += c.Available
	}
	if total < quantity {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock across locations: available=%d, requested=%d", total, quantity))
	}

	sort.Slice(ordered, func(a, b int) bool {
		return ordered[a].LocationCode < ordered[b].LocationCode
	})

	draws := make([]Draw, 0, len(ordered))
	remaining := quantity
	for _, c := range ordered {
		if remaining == 0 {
			break
		}
		take := c.Available
		if take > remaining {
			take = remaining
		}
		draws = append(draws, Draw{
			InventoryID: c.InventoryID,
			LocationID:  c.LocationID,
			Quantity:    take,
		})
		remaining -= take
	}
	return draws, nil
}
