package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a movement header together with its detail lines
func (r *GormTransactionRepository) Create(ctx context.Context, tx *ledger.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID loads a movement header with its details
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockTransaction, error) {
	var tx ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByPartner returns a partner's movements, newest first
func (r *GormTransactionRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where("partner_id = ?", partnerID).
		Order("transaction_date DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindRecent returns the most recent movements across all partners
func (r *GormTransactionRepository) FindRecent(ctx context.Context, limit int) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Order("transaction_date DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindDetailsByProduct returns the movement lines that touched a product,
// newest first.
func (r *GormTransactionRepository) FindDetailsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]ledger.TransactionDetail, error) {
	var details []ledger.TransactionDetail
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// Save updates a movement header. Detail lines are write-once and are not
// re-saved here.
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.StockTransaction) error {
	return r.db.WithContext(ctx).Omit("Details").Save(tx).Error
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
