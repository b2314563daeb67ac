package repository

import (
	"context"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type DrawRepository interface {
	Create(ctx context.Context, draw *entity.Draw) error
	GetByID(ctx context.Context, drawID string) (*entity.Draw, error)
	GetListByOwnerID(ctx context.Context, ownerID string, offset, limit int) ([]entity.Draw, error)

	// CheckAndStartExecution atomically moves a pending draw to executing.
	// It returns gorm.ErrRecordNotFound when the draw is not pending,
	// which is how a completed or failed draw refuses re-execution.
	CheckAndStartExecution(ctx context.Context, drawID string) error
	UpdateStatus(ctx context.Context, drawID string, status entity.DrawStatus) error

	CreateExecution(ctx context.Context, execution *entity.DrawExecution) error
	GetExecutionByDrawID(ctx context.Context, drawID string) (*entity.DrawExecution, error)
	GetExecutionByHash(ctx context.Context, verificationHash string) (*entity.DrawExecution, error)
}

type drawRepository struct{}

func NewDrawRepository() *drawRepository {
	return &drawRepository{}
}

func (r *drawRepository) Create(ctx context.Context, draw *entity.Draw) error {
	return xcontext.DB(ctx).Create(draw).Error
}

func (r *drawRepository) GetByID(ctx context.Context, drawID string) (*entity.Draw, error) {
	var result entity.Draw
	if err := xcontext.DB(ctx).Take(&result, "id=?", drawID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *drawRepository) GetListByOwnerID(
	ctx context.Context, ownerID string, offset, limit int,
) ([]entity.Draw, error) {
	var result []entity.Draw
	err := xcontext.DB(ctx).Where("owner_id=?", ownerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *drawRepository) CheckAndStartExecution(ctx context.Context, drawID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Draw{}).
		Where("id=? AND status=?", drawID, entity.DrawPending).
		Update("status", entity.DrawExecuting)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *drawRepository) UpdateStatus(
	ctx context.Context, drawID string, status entity.DrawStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Draw{}).
		Where("id=?", drawID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *drawRepository) CreateExecution(ctx context.Context, execution *entity.DrawExecution) error {
	return xcontext.DB(ctx).Create(execution).Error
}

func (r *drawRepository) GetExecutionByDrawID(ctx context.Context, drawID string) (*entity.DrawExecution, error) {
	var result entity.DrawExecution
	if err := xcontext.DB(ctx).Take(&result, "draw_id=?", drawID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *drawRepository) GetExecutionByHash(ctx context.Context, verificationHash string) (*entity.DrawExecution, error) {
	var result entity.DrawExecution
	if err := xcontext.DB(ctx).Take(&result, "verification_hash=?", verificationHash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
