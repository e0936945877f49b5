package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// PaymentType distinguishes money received from money paid out
type PaymentType string

const (
	// PaymentTypeReceipt is money collected from a customer
	PaymentTypeReceipt PaymentType = "RECEIPT"
	// PaymentTypeDisbursement is money paid to a supplier
	PaymentTypeDisbursement PaymentType = "DISBURSEMENT"
)

// IsValid returns true if the payment type is a known value
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeReceipt || t == PaymentTypeDisbursement
}

// Payment records a single settlement against a partner's debt. Immutable
// after creation.
type Payment struct {
	shared.BaseEntity
	PartnerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        PaymentType     `gorm:"size:16;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note        string          `gorm:"size:512"`
	PaymentDate time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment for a partner
func NewPayment(partnerID uuid.UUID, paymentType PaymentType, amount decimal.Decimal, note string) (*Payment, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Partner ID cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Unknown payment type")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Payment amount must be positive")
	}
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		PartnerID:   partnerID,
		Type:        paymentType,
		Amount:      amount,
		Note:        note,
		PaymentDate: time.Now(),
	}, nil
}

// PaymentRepository provides append-only access to payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByPartner(ctx context.Context, partnerID uuid.UUID) ([]Payment, error)
}
