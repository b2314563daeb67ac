package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/logger"
	"github.com/drawlab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		Draw: config.DrawConfigs{
			CostPerDraw:       1,
			MaxPagesPerSource: 100,
			RetryBase:         time.Millisecond,
			RetryMultiplier:   2,
			RetryMaxAttempts:  3,
		},
		Platforms: config.PlatformsConfig{
			Instagram: config.PlatformConfigs{TokenExpiresIn: 30 * 24 * time.Hour, PageSize: 50},
			TikTok:    config.PlatformConfigs{TokenExpiresIn: 30 * 24 * time.Hour, PageSize: 50},
			Twitter:   config.PlatformConfigs{TokenExpiresIn: 30 * 24 * time.Hour, PageSize: 50},
			Facebook:  config.PlatformConfigs{TokenExpiresIn: 30 * 24 * time.Hour, PageSize: 50},
			YouTube:   config.PlatformConfigs{TokenExpiresIn: 30 * 24 * time.Hour, PageSize: 50},
		},
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
