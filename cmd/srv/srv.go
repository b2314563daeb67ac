package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/domain"
	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/drawlab/backend/pkg/kafka"
	"github.com/drawlab/backend/pkg/logger"
	"github.com/drawlab/backend/pkg/pubsub"
	"github.com/drawlab/backend/pkg/router"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/drawlab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs config.Configs

	publisher  pubsub.Publisher
	aggregator *acquisition.Aggregator

	drawRepo      repository.DrawRepository
	creditRepo    repository.CreditRepository
	blacklistRepo repository.BlacklistRepository

	drawDomain      domain.DrawDomain
	creditDomain    domain.CreditDomain
	blacklistDomain domain.BlacklistDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	configs, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.configs = configs
	s.ctx = xcontext.WithConfigs(context.Background(), configs)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(configs.LogLevel))
	return nil
}

func (s *srv) loadDatabase() error {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) loadSnowFlake() error {
	node, err := snowflake.NewNode(0)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) loadRedis() (xredis.Client, error) {
	return xredis.NewClient(s.ctx)
}

func (s *srv) loadPublisher() {
	s.publisher = kafka.NewPublisher("drawlab-api", []string{s.configs.Kafka.Addr})
}

func (s *srv) loadAggregator() {
	policy := backoff.Policy{
		Base:        s.configs.Draw.RetryBase,
		Multiplier:  s.configs.Draw.RetryMultiplier,
		MaxAttempts: s.configs.Draw.RetryMaxAttempts,
	}

	platforms := s.configs.Platforms
	s.aggregator = acquisition.NewAggregator(
		acquisition.NewInstagramAdapter(platforms.Instagram, policy),
		acquisition.NewTikTokAdapter(platforms.TikTok, policy),
		acquisition.NewTwitterAdapter(platforms.Twitter, policy),
		acquisition.NewFacebookAdapter(platforms.Facebook, policy),
		acquisition.NewYouTubeAdapter(platforms.YouTube, policy),
	)
}

func (s *srv) loadRepos() {
	s.drawRepo = repository.NewDrawRepository()
	s.creditRepo = repository.NewCreditRepository()
	s.blacklistRepo = repository.NewBlacklistRepository()
}

func (s *srv) loadDomains(redisClient xredis.Client) {
	s.creditDomain = domain.NewCreditDomain(s.creditRepo)
	s.blacklistDomain = domain.NewBlacklistDomain(s.blacklistRepo)
	s.drawDomain = domain.NewDrawDomain(
		s.drawRepo,
		s.blacklistRepo,
		s.creditDomain,
		s.aggregator,
		redisClient,
		s.publisher,
	)
}
