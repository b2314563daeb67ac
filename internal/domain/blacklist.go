package domain

import (
	"context"
	"errors"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BlacklistDomain interface {
	Add(context.Context, *model.AddBlacklistRequest) (*model.AddBlacklistResponse, error)
	Get(context.Context, *model.GetBlacklistRequest) (*model.GetBlacklistResponse, error)
	Remove(context.Context, *model.RemoveBlacklistRequest) (*model.RemoveBlacklistResponse, error)
}

type blacklistDomain struct {
	blacklistRepo repository.BlacklistRepository
}

func NewBlacklistDomain(blacklistRepo repository.BlacklistRepository) *blacklistDomain {
	return &blacklistDomain{blacklistRepo: blacklistRepo}
}

func (d *blacklistDomain) Add(
	ctx context.Context, req *model.AddBlacklistRequest,
) (*model.AddBlacklistResponse, error) {
	if len(req.Handles) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one handle")
	}

	ownerID := xcontext.RequestUserID(ctx)
	for _, handle := range req.Handles {
		normalized := entity.NormalizeHandle(handle)
		if normalized == "" {
			return nil, errorx.New(errorx.BadRequest, "Invalid handle %s", handle)
		}

		entry := &entity.BlacklistEntry{OwnerID: ownerID, Handle: normalized}
		if err := d.blacklistRepo.Upsert(ctx, entry); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot upsert blacklist entry: %v", err)
			return nil, errorx.Unknown
		}
	}

	return &model.AddBlacklistResponse{}, nil
}

func (d *blacklistDomain) Get(
	ctx context.Context, req *model.GetBlacklistRequest,
) (*model.GetBlacklistResponse, error) {
	entries, err := d.blacklistRepo.GetByOwnerID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get blacklist: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetBlacklistResponse{Handles: []string{}}
	for _, entry := range entries {
		resp.Handles = append(resp.Handles, entry.Handle)
	}

	return resp, nil
}

func (d *blacklistDomain) Remove(
	ctx context.Context, req *model.RemoveBlacklistRequest,
) (*model.RemoveBlacklistResponse, error) {
	err := d.blacklistRepo.Delete(ctx, xcontext.RequestUserID(ctx), req.Handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found handle in blacklist")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete blacklist entry: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveBlacklistResponse{}, nil
}
