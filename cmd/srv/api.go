package main

import (
	"net/http"

	"github.com/drawlab/backend/internal/middleware"
	"github.com/drawlab/backend/pkg/router"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadSnowFlake(); err != nil {
		return err
	}

	redisClient, err := s.loadRedis()
	if err != nil {
		return err
	}

	s.loadPublisher()
	s.loadAggregator()
	s.loadRepos()
	s.loadDomains(redisClient)
	s.loadRouter()

	defer s.publisher.Stop(s.ctx)

	addr := s.configs.ApiServer.Address()
	xcontext.Logger(s.ctx).Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.router.Handler())
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)

	// Verification is public, anyone holding a hash can audit a draw.
	router.GET(s.router, "/getVerification", s.drawDomain.GetVerification)

	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		// Draw API
		router.POST(authRouter, "/runDraw", s.drawDomain.RunDraw)
		router.GET(authRouter, "/getMyDraws", s.drawDomain.GetMyDraws)

		// Credit API
		router.POST(authRouter, "/buyCredits", s.creditDomain.Buy)
		router.GET(authRouter, "/getBalance", s.creditDomain.GetBalance)
		router.GET(authRouter, "/getLedger", s.creditDomain.GetLedger)

		// Blacklist API
		router.POST(authRouter, "/addBlacklist", s.blacklistDomain.Add)
		router.GET(authRouter, "/getBlacklist", s.blacklistDomain.Get)
		router.POST(authRouter, "/removeBlacklist", s.blacklistDomain.Remove)
	}
}
