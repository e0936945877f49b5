package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// TransactionType represents the business movement kind
type TransactionType string

const (
	// TransactionTypeImport is a receipt of goods into the warehouse
	TransactionTypeImport TransactionType = "IMPORT"
	// TransactionTypeExport is a shipment of goods out of the warehouse
	TransactionTypeExport TransactionType = "EXPORT"
	// TransactionTypeTransfer is an internal move between two locations
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// String returns the string representation of the transaction type
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is a known value
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeImport, TransactionTypeExport, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a movement header
type TransactionStatus string

const (
	// TransactionStatusCompleted means the stock effect has been applied
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	// TransactionStatusPending means physical execution is deferred to tasks
	TransactionStatusPending TransactionStatus = "PENDING"
	// TransactionStatusCancelled means the movement was voided
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid returns true if the status is a known value
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusPending, TransactionStatusCancelled:
		return true
	}
	return false
}

// StockTransaction is the movement header. It exclusively owns its detail
// lines; the set of details is write-once at creation.
type StockTransaction struct {
	shared.BaseEntity
	TransactionDate time.Time         `gorm:"not null;index"`
	Type            TransactionType   `gorm:"size:16;not null;index"`
	Status          TransactionStatus `gorm:"size:16;not null;default:COMPLETED"`
	Note            string            `gorm:"size:512"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy       string            `gorm:"size:128"`
	PartnerID       *uuid.UUID        `gorm:"type:uuid;index"`
	WarehouseID     *uuid.UUID        `gorm:"type:uuid;index"`

	Details []TransactionDetail `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "transactions"
}

// NewStockTransaction creates a movement header with no details yet
func NewStockTransaction(txType TransactionType, partnerID, warehouseID *uuid.UUID, note, createdBy string) (*StockTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Unknown transaction type")
	}
	return &StockTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TransactionDate: time.Now(),
		Type:            txType,
		Status:          TransactionStatusCompleted,
		Note:            note,
		CreatedBy:       createdBy,
		PartnerID:       partnerID,
		WarehouseID:     warehouseID,
		TotalAmount:     decimal.Zero,
		Details:         make([]TransactionDetail, 0),
	}, nil
}

// AddDetail appends a movement line and folds it into the total amount
func (t *StockTransaction) AddDetail(productID uuid.UUID, locationID *uuid.UUID, quantity int64, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_REQUEST", "Detail quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_REQUEST", "Unit price cannot be negative")
	}
	t.Details = append(t.Details, TransactionDetail{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: t.ID,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
	})
	t.TotalAmount = t.TotalAmount.Add(unitPrice.Mul(decimal.NewFromInt(quantity)))
	return nil
}

// MarkPending flags the header as awaiting physical execution by tasks
func (t *StockTransaction) MarkPending() {
	t.Status = TransactionStatusPending
}

// Complete flips a pending header to completed once all its tasks are done
func (t *StockTransaction) Complete() error {
	if t.Status == TransactionStatusCancelled {
		return shared.ErrAlreadyCancelled
	}
	t.Status = TransactionStatusCompleted
	t.UpdatedAt = time.Now()
	return nil
}

// Cancel voids the movement. Cancelling twice is an error.
func (t *StockTransaction) Cancel() error {
	if t.Status == TransactionStatusCancelled {
		return shared.ErrAlreadyCancelled
	}
	t.Status = TransactionStatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// IsCancelled returns true if the movement has been voided
func (t *StockTransaction) IsCancelled() bool {
	return t.Status == TransactionStatusCancelled
}

// AuditValues returns the auditable field snapshot of the header
func (t *StockTransaction) AuditValues() map[string]interface{} {
	values := map[string]interface{}{
		"Type":        string(t.Type),
		"Status":      string(t.Status),
		"TotalAmount": t.TotalAmount.String(),
		"Note":        t.Note,
	}
	if t.PartnerID != nil {
		values["PartnerID"] = t.PartnerID.String()
	}
	if t.WarehouseID != nil {
		values["WarehouseID"] = t.WarehouseID.String()
	}
	return values
}

// TransactionDetail is one movement line. Immutable after creation.
type TransactionDetail struct {
	shared.BaseEntity
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID    *uuid.UUID      `gorm:"type:uuid"`
	Quantity      int64           `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (TransactionDetail) TableName() string {
	return "transaction_details"
}

// Amount returns quantity times unit price for the line
func (d *TransactionDetail) Amount() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(d.Quantity))
}

// AuditValues returns the auditable field snapshot of the line
func (d *TransactionDetail) AuditValues() map[string]interface{} {
	values := map[string]interface{}{
		"TransactionID": d.TransactionID.String(),
		"ProductID":     d.ProductID.String(),
		"Quantity":      d.Quantity,
		"UnitPrice":     d.UnitPrice.String(),
	}
	if d.LocationID != nil {
		values["LocationID"] = d.LocationID.String()
	}
	return values
}
