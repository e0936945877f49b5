package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/ledger"
)

// MovementLine is one requested (product, quantity) of a movement. Location
// is required for imports and optional for exports; an export without a
// location is split across locations by the allocator.
type MovementLine struct {
	ProductID  uuid.UUID
	LocationID *uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
}

// CreateMovementInput is the request for one business movement
type CreateMovementInput struct {
	Type        ledger.TransactionType
	PartnerID   *uuid.UUID
	WarehouseID *uuid.UUID
	Lines       []MovementLine
	Note        string
	CreatedBy   string
	AmountPaid  decimal.Decimal
	// Deferred persists the movement as PENDING and creates one warehouse
	// task per line instead of mutating stock now. Stock moves when an
	// operator executes the tasks.
	Deferred bool
	Notify   bool
}

// MovementResult is returned for a successfully persisted movement
type MovementResult struct {
	TransactionID uuid.UUID                `json:"transaction_id"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	Status        ledger.TransactionStatus `json:"status"`
	TaskIDs       []uuid.UUID              `json:"task_ids,omitempty"`
}

// TransferInput is the request for an internal move between two locations
type TransferInput struct {
	ProductID      uuid.UUID
	Quantity       int64
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	Note           string
	CreatedBy      string
}

// TransactionResponse is the read model of a movement header
type TransactionResponse struct {
	ID              uuid.UUID                   `json:"id"`
	Code            string                      `json:"code"`
	Type            ledger.TransactionType      `json:"type"`
	Status          ledger.TransactionStatus    `json:"status"`
	TransactionDate time.Time                   `json:"transaction_date"`
	TotalAmount     decimal.Decimal             `json:"total_amount"`
	Note            string                      `json:"note,omitempty"`
	CreatedBy       string                      `json:"created_by,omitempty"`
	PartnerID       *uuid.UUID                  `json:"partner_id,omitempty"`
	WarehouseID     *uuid.UUID                  `json:"warehouse_id,omitempty"`
	Details         []TransactionDetailResponse `json:"details"`
}

// TransactionDetailResponse is the read model of a movement line
type TransactionDetailResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID *uuid.UUID      `json:"location_id,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// StockRowResponse is the read model of a per-location stock row
type StockRowResponse struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationCode string    `json:"location_code"`
	Quantity     int64     `json:"quantity"`
}

// TaskResponse is the read model of a pending warehouse task
type TaskResponse struct {
	ID            uuid.UUID              `json:"id"`
	Type          ledger.TransactionType `json:"type"`
	Quantity      int64                  `json:"quantity"`
	ProductID     uuid.UUID              `json:"product_id"`
	LocationID    uuid.UUID              `json:"location_id"`
	TransactionID *uuid.UUID             `json:"transaction_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// newTaskResponse maps a task to its read model
func newTaskResponse(task *ledger.WarehouseTask) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		Type:          task.Type,
		Quantity:      task.Quantity,
		ProductID:     task.ProductID,
		LocationID:    task.LocationID,
		TransactionID: task.TransactionID,
		CreatedAt:     task.CreatedAt,
	}
}

// newTransactionResponse maps a header to its read model
func newTransactionResponse(tx *ledger.StockTransaction) TransactionResponse {
	details := make([]TransactionDetailResponse, 0, len(tx.Details))
	for i := range tx.Details {
		d := &tx.Details[i]
		details = append(details, TransactionDetailResponse{
			ProductID:  d.ProductID,
			LocationID: d.LocationID,
			Quantity:   d.Quantity,
			UnitPrice:  d.UnitPrice,
			Amount:     d.Amount(),
		})
	}
	return TransactionResponse{
		ID:              tx.ID,
		Code:            transactionCode(tx),
		Type:            tx.Type,
		Status:          tx.Status,
		TransactionDate: tx.TransactionDate,
		TotalAmount:     tx.TotalAmount,
		Note:            tx.Note,
		CreatedBy:       tx.CreatedBy,
		PartnerID:       tx.PartnerID,
		WarehouseID:     tx.WarehouseID,
		Details:         details,
	}
}

// transactionCode derives the operator-facing short code for a movement
func transactionCode(tx *ledger.StockTransaction) string {
	prefix := "TRF-"
	switch tx.Type {
	case ledger.TransactionTypeImport:
		prefix = "IMP-"
	case ledger.TransactionTypeExport:
		prefix = "EXP-"
	}
	id := tx.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + strings.ToUpper(id)
}
