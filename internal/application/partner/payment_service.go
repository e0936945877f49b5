package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"github.com/warehousepro/backend/internal/domain/partner"
	"github.com/warehousepro/backend/internal/domain/shared"
)

// CreatePaymentInput describes one settlement against a partner's balance
type CreatePaymentInput struct {
	PartnerID uuid.UUID
	Type      partner.PaymentType
	Amount    decimal.Decimal
	Note      string
}

// PaymentService settles partner debt. Recording the payment and reducing
// the running balance commit together through the ledger unit of work, so
// the payments table and the debt column never disagree.
type PaymentService struct {
	scope appledger.LedgerScope
}

// NewPaymentService creates a payment service
func NewPaymentService(scope appledger.LedgerScope) *PaymentService {
	return &PaymentService{scope: scope}
}

// CreatePayment records a payment and reduces the partner's debt by the
// paid amount, floored at zero.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*partner.Payment, error) {
	payment, err := partner.NewPayment(input.PartnerID, input.Type, input.Amount, input.Note)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		p, err := repos.Partners().FindByIDForUpdate(ctx, input.PartnerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PARTNER_NOT_FOUND", fmt.Sprintf("Partner %s not found", input.PartnerID))
			}
			return err
		}
		before := p.AuditValues()
		if err := p.SettleDebt(input.Amount); err != nil {
			return err
		}
		if err := repos.Partners().Save(ctx, p); err != nil {
			return err
		}
		repos.Changes().RecordUpdate(p.TableName(), p.ID, before, p.AuditValues())

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		repos.Changes().RecordCreate(payment.TableName(), payment.ID, map[string]interface{}{
			"PartnerID":   payment.PartnerID.String(),
			"Type":        string(payment.Type),
			"Amount":      payment.Amount.String(),
			"Note":        payment.Note,
			"PaymentDate": payment.PaymentDate,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// PaymentsByPartner returns a partner's payment history
func (s *PaymentService) PaymentsByPartner(ctx context.Context, partnerID uuid.UUID) ([]partner.Payment, error) {
	var payments []partner.Payment
	err := s.scope.Execute(ctx, func(ctx context.Context, repos appledger.Repositories) error {
		var err error
		payments, err = repos.Payments().FindByPartner(ctx, partnerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}
