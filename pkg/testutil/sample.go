package testutil

import (
	"context"
	"time"

	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/xcontext"
)

// GrantCredits inserts one purchase entry for the owner.
func GrantCredits(ctx context.Context, ownerID string, amount int64) {
	creditRepo := repository.NewCreditRepository()
	err := creditRepo.CreateEntry(ctx, &entity.CreditLedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		OwnerID:       ownerID,
		Amount:        amount,
		Kind:          entity.CreditPurchase,
	})
	if err != nil {
		panic(err)
	}
}

// SampleRecord builds a like record with sensible defaults.
func SampleRecord(platform entity.Platform, userID, handle string) acquisition.Record {
	return acquisition.Record{
		Platform:       platform,
		UserID:         userID,
		Handle:         handle,
		DisplayName:    handle,
		Action:         entity.ActionLike,
		FollowerCount:  100,
		AccountAgeDays: 365,
		Timestamp:      time.Now(),
	}
}
