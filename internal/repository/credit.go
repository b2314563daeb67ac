package repository

import (
	"context"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/xcontext"
)

type CreditRepository interface {
	// CreateEntry appends one ledger entry. The ledger is append-only,
	// there is no update or delete.
	CreateEntry(ctx context.Context, entry *entity.CreditLedgerEntry) error
	GetBalance(ctx context.Context, ownerID string) (int64, error)
	GetEntriesByOwnerID(ctx context.Context, ownerID string, offset, limit int) ([]entity.CreditLedgerEntry, error)
}

type creditRepository struct{}

func NewCreditRepository() *creditRepository {
	return &creditRepository{}
}

func (r *creditRepository) CreateEntry(ctx context.Context, entry *entity.CreditLedgerEntry) error {
	return xcontext.DB(ctx).Create(entry).Error
}

func (r *creditRepository) GetBalance(ctx context.Context, ownerID string) (int64, error) {
	var balance int64
	err := xcontext.DB(ctx).Model(&entity.CreditLedgerEntry{}).
		Where("owner_id=?", ownerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}

	return balance, nil
}

func (r *creditRepository) GetEntriesByOwnerID(
	ctx context.Context, ownerID string, offset, limit int,
) ([]entity.CreditLedgerEntry, error) {
	var result []entity.CreditLedgerEntry
	err := xcontext.DB(ctx).Where("owner_id=?", ownerID).
		Order("id DESC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
