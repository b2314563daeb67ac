package repository

import (
	"context"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlacklistRepository interface {
	Upsert(ctx context.Context, entry *entity.BlacklistEntry) error
	GetByOwnerID(ctx context.Context, ownerID string) ([]entity.BlacklistEntry, error)
	Delete(ctx context.Context, ownerID, handle string) error
}

type blacklistRepository struct{}

func NewBlacklistRepository() *blacklistRepository {
	return &blacklistRepository{}
}

func (r *blacklistRepository) Upsert(ctx context.Context, entry *entity.BlacklistEntry) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

func (r *blacklistRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]entity.BlacklistEntry, error) {
	var result []entity.BlacklistEntry
	if err := xcontext.DB(ctx).Find(&result, "owner_id=?", ownerID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *blacklistRepository) Delete(ctx context.Context, ownerID, handle string) error {
	tx := xcontext.DB(ctx).
		Where("owner_id=? AND handle=?", ownerID, entity.NormalizeHandle(handle)).
		Delete(&entity.BlacklistEntry{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
