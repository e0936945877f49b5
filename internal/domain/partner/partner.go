package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// PartnerType distinguishes suppliers from customers
type PartnerType string

const (
	// PartnerTypeSupplier supplies goods to the warehouse
	PartnerTypeSupplier PartnerType = "SUPPLIER"
	// PartnerTypeCustomer receives goods from the warehouse
	PartnerTypeCustomer PartnerType = "CUSTOMER"
)

// IsValid returns true if the partner type is a known value
func (t PartnerType) IsValid() bool {
	return t == PartnerTypeSupplier || t == PartnerTypeCustomer
}

// Partner is a supplier or customer with a running debt balance. The sign
// convention follows the ledger: a movement with a monetary total increases
// what the partner owes, payments decrease it.
type Partner struct {
	shared.BaseEntity
	Name       string          `gorm:"size:255;not null"`
	Phone      string          `gorm:"size:32"`
	Email      string          `gorm:"size:255"`
	Address    string          `gorm:"size:512"`
	Type       PartnerType     `gorm:"size:16;not null;default:SUPPLIER"`
	DebtAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

// NewPartner creates a new partner
func NewPartner(name string, partnerType PartnerType) (*Partner, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Partner name cannot be empty")
	}
	if !partnerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Unknown partner type")
	}
	return &Partner{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Type:       partnerType,
		IsActive:   true,
	}, nil
}

// AddDebt increases the partner's outstanding balance
func (p *Partner) AddDebt(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_REQUEST", "Debt amount cannot be negative")
	}
	p.DebtAmount = p.DebtAmount.Add(amount)
	p.UpdatedAt = time.Now()
	return nil
}

// SettleDebt decreases the partner's outstanding balance by a payment,
// floored at zero. Overpayments are not tracked as credit.
func (p *Partner) SettleDebt(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_REQUEST", "Payment amount must be positive")
	}
	p.DebtAmount = p.DebtAmount.Sub(amount)
	if p.DebtAmount.IsNegative() {
		p.DebtAmount = decimal.Zero
	}
	p.UpdatedAt = time.Now()
	return nil
}

// AuditValues returns the auditable field snapshot of the partner
func (p *Partner) AuditValues() map[string]interface{} {
	return map[string]interface{}{
		"Name":       p.Name,
		"Type":       string(p.Type),
		"DebtAmount": p.DebtAmount.String(),
		"IsActive":   p.IsActive,
	}
}

// PartnerRepository provides access to partners
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	// FindByIDForUpdate loads the partner with a row lock so concurrent
	// movements serialize their debt adjustments.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Partner, error)
	Save(ctx context.Context, p *Partner) error
}
