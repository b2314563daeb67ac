package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/domain/eligibility"
	"github.com/drawlab/backend/internal/domain/participant"
	"github.com/drawlab/backend/internal/domain/selection"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/enum"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/pubsub"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/drawlab/backend/pkg/xredis"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const verificationCacheTTL = 24 * time.Hour

type DrawDomain interface {
	RunDraw(context.Context, *model.RunDrawRequest) (*model.RunDrawResponse, error)
	GetMyDraws(context.Context, *model.GetMyDrawsRequest) (*model.GetMyDrawsResponse, error)
	GetVerification(context.Context, *model.GetVerificationRequest) (*model.GetVerificationResponse, error)
}

type drawDomain struct {
	drawRepo      repository.DrawRepository
	blacklistRepo repository.BlacklistRepository
	creditDomain  CreditDomain
	aggregator    *acquisition.Aggregator
	redisClient   xredis.Client
	publisher     pubsub.Publisher
}

func NewDrawDomain(
	drawRepo repository.DrawRepository,
	blacklistRepo repository.BlacklistRepository,
	creditDomain CreditDomain,
	aggregator *acquisition.Aggregator,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *drawDomain {
	return &drawDomain{
		drawRepo:      drawRepo,
		blacklistRepo: blacklistRepo,
		creditDomain:  creditDomain,
		aggregator:    aggregator,
		redisClient:   redisClient,
		publisher:     publisher,
	}
}

func (d *drawDomain) RunDraw(
	ctx context.Context, req *model.RunDrawRequest,
) (*model.RunDrawResponse, error) {
	ownerID := xcontext.RequestUserID(ctx)
	if ownerID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	draw, settings, err := d.prepareDraw(ctx, req, ownerID)
	if err != nil {
		return nil, err
	}

	cost := xcontext.Configs(ctx).Draw.CostPerDraw
	balance, err := d.creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	if err != nil {
		return nil, err
	}

	// Refused before the draw leaves pending, so the owner can top up and
	// retry the same draw.
	if balance.Balance < cost {
		return nil, errorx.New(errorx.InsufficientCredits,
			"Not enough credits, have %d, need %d", balance.Balance, cost)
	}

	if err := d.drawRepo.CheckAndStartExecution(ctx, draw.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExecuted, "Draw has already been executed")
		}

		xcontext.Logger(ctx).Errorf("Cannot start execution: %v", err)
		return nil, errorx.Unknown
	}

	executedAt := time.Now()
	result, err := d.executeDraw(ctx, draw, settings, req.Blacklist, executedAt)
	if err != nil {
		// A concurrent draw can drain the balance between the precheck and
		// the debit. That draw returns to pending, a top up can rerun it.
		if errors.Is(err, errorx.Error{Code: errorx.InsufficientCredits}) {
			d.revertToPending(ctx, draw.ID)
		} else {
			d.markFailed(ctx, draw.ID)
		}

		return nil, err
	}

	d.publishCompleted(ctx, draw, result)
	d.cacheVerification(ctx, d.buildVerification(draw.ID, result))

	return d.buildResponse(draw, result), nil
}

// executeDraw runs acquisition, normalization, eligibility and selection,
// then persists the execution and the credit debit. Nothing of a failed
// execution is persisted besides the failed status and, if the debit
// already happened, its offsetting refund.
func (d *drawDomain) executeDraw(
	ctx context.Context,
	draw *entity.Draw,
	settings eligibility.Settings,
	extraBlacklist []string,
	executedAt time.Time,
) (*executionResult, error) {
	acquired, err := d.aggregator.Fetch(ctx, draw.Sources, settings.RequiredKinds())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Acquisition failed: %v", err)
		return nil, acquisitionError(err)
	}

	participants := participant.Normalize(acquired.Records)

	blacklist, err := d.ownerBlacklist(ctx, draw.OwnerID, extraBlacklist)
	if err != nil {
		return nil, err
	}

	pipeline := eligibility.NewPipeline(blacklist, settings)
	verdicts := pipeline.Apply(ctx, participants)
	pool := eligibility.EligiblePool(participants, verdicts)

	seed := draw.Seed
	if seed == "" {
		seed = selection.DeriveSeed(draw.ID, draw.OwnerID, executedAt)
	}

	selected, err := selection.Select(
		draw.ID, seed, pool, draw.WinnerCount, draw.SubstituteCount)
	if err != nil {
		return nil, err
	}

	cost := xcontext.Configs(ctx).Draw.CostPerDraw
	if err := d.creditDomain.DebitForDraw(ctx, draw.OwnerID, draw.ID, cost); err != nil {
		return nil, err
	}

	execution := &entity.DrawExecution{
		Base:             entity.Base{ID: uuid.NewString()},
		DrawID:           draw.ID,
		Seed:             seed,
		EligiblePool:     poolIDs(pool),
		WinnerCount:      draw.WinnerCount,
		SubstituteCount:  draw.SubstituteCount,
		Picks:            entityPicks(selected.Picks),
		VerificationHash: selected.VerificationHash,
		UnderFilled:      selected.UnderFilled,
		ExecutedAt:       executedAt,
	}

	if err := d.persistExecution(ctx, execution); err != nil {
		if refundErr := d.creditDomain.RefundDraw(ctx, draw.OwnerID, draw.ID, cost); refundErr != nil {
			xcontext.Logger(ctx).Errorf("Cannot refund failed draw: %v", refundErr)
		}

		return nil, err
	}

	return &executionResult{
		execution:       execution,
		failedPlatforms: acquired.FailedPlatforms,
	}, nil
}

type executionResult struct {
	execution       *entity.DrawExecution
	failedPlatforms []entity.Platform
}

func (d *drawDomain) prepareDraw(
	ctx context.Context, req *model.RunDrawRequest, ownerID string,
) (*entity.Draw, eligibility.Settings, error) {
	if req.DrawID != "" {
		draw, err := d.drawRepo.GetByID(ctx, req.DrawID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, eligibility.Settings{}, errorx.New(errorx.NotFound, "Not found draw")
			}

			xcontext.Logger(ctx).Errorf("Cannot get draw: %v", err)
			return nil, eligibility.Settings{}, errorx.Unknown
		}

		if draw.OwnerID != ownerID {
			return nil, eligibility.Settings{}, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		settings, err := eligibility.NewSettings(ctx, draw.Settings)
		if err != nil {
			return nil, eligibility.Settings{}, err
		}

		return draw, settings, nil
	}

	if req.WinnerCount <= 0 {
		return nil, eligibility.Settings{}, errorx.New(
			errorx.BadRequest, "Winner count must be a positive number")
	}

	if req.SubstituteCount < 0 {
		return nil, eligibility.Settings{}, errorx.New(
			errorx.BadRequest, "Substitute count must not be negative")
	}

	sources, err := d.resolveSources(ctx, req)
	if err != nil {
		return nil, eligibility.Settings{}, err
	}

	settings, err := eligibility.NewSettings(ctx, req.Filters)
	if err != nil {
		return nil, eligibility.Settings{}, err
	}

	draw := &entity.Draw{
		Base:            entity.Base{ID: uuid.NewString()},
		OwnerID:         ownerID,
		Status:          entity.DrawPending,
		WinnerCount:     req.WinnerCount,
		SubstituteCount: req.SubstituteCount,
		Seed:            req.Seed,
		Sources:         sources,
		Settings:        structs.Map(settings),
	}

	if err := d.drawRepo.Create(ctx, draw); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create draw: %v", err)
		return nil, eligibility.Settings{}, errorx.Unknown
	}

	return draw, settings, nil
}

// resolveSources validates the declared sources against their platform
// adapters before anything is persisted, so an unparseable URL or an
// unsupported platform is rejected up front.
func (d *drawDomain) resolveSources(
	ctx context.Context, req *model.RunDrawRequest,
) (entity.Array[entity.DrawSource], error) {
	declared := req.Sources
	if len(declared) == 0 {
		if req.Platform == "" || req.PostURL == "" {
			return nil, errorx.New(errorx.BadRequest, "Require at least one source")
		}

		declared = []model.DrawSource{
			{Platform: req.Platform, PostURL: req.PostURL, Required: true},
		}
	}

	sources := make(entity.Array[entity.DrawSource], 0, len(declared))
	for _, s := range declared {
		platform, err := enum.ToEnum[entity.Platform](s.Platform)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid platform %s", s.Platform)
		}

		adapter, err := d.aggregator.Adapter(platform)
		if err != nil {
			return nil, err
		}

		if _, err := adapter.ExtractResourceID(s.PostURL); err != nil {
			return nil, err
		}

		sources = append(sources, entity.DrawSource{
			Platform: platform,
			PostURL:  s.PostURL,
			Required: s.Required,
		})
	}

	return sources, nil
}

func (d *drawDomain) ownerBlacklist(
	ctx context.Context, ownerID string, extra []string,
) ([]string, error) {
	entries, err := d.blacklistRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get blacklist: %v", err)
		return nil, errorx.Unknown
	}

	handles := make([]string, 0, len(entries)+len(extra))
	for _, entry := range entries {
		handles = append(handles, entry.Handle)
	}

	return append(handles, extra...), nil
}

func (d *drawDomain) persistExecution(ctx context.Context, execution *entity.DrawExecution) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.drawRepo.CreateExecution(ctx, execution); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create execution: %v", err)
		return errorx.Unknown
	}

	if err := d.drawRepo.UpdateStatus(ctx, execution.DrawID, entity.DrawCompleted); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete draw: %v", err)
		return errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (d *drawDomain) revertToPending(ctx context.Context, drawID string) {
	if err := d.drawRepo.UpdateStatus(ctx, drawID, entity.DrawPending); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot revert draw to pending: %v", err)
	}
}

func (d *drawDomain) markFailed(ctx context.Context, drawID string) {
	if err := d.drawRepo.UpdateStatus(ctx, drawID, entity.DrawFailed); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark draw as failed: %v", err)
	}
}

func (d *drawDomain) publishCompleted(ctx context.Context, draw *entity.Draw, result *executionResult) {
	event := model.DrawCompletedEvent{
		DrawID:           draw.ID,
		OwnerID:          draw.OwnerID,
		VerificationHash: result.execution.VerificationHash,
		Winners:          modelWinners(result.execution.Picks, false),
		Substitutes:      modelWinners(result.execution.Picks, true),
		UnderFilled:      result.execution.UnderFilled,
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal completed event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, model.DrawCompletedTopic, &pubsub.Pack{
		Key: []byte(draw.ID),
		Msg: b,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish completed event: %v", err)
	}
}

func (d *drawDomain) GetMyDraws(
	ctx context.Context, req *model.GetMyDrawsRequest,
) (*model.GetMyDrawsResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	draws, err := d.drawRepo.GetListByOwnerID(ctx, xcontext.RequestUserID(ctx), req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get draws: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMyDrawsResponse{Draws: []model.DrawSummary{}}
	for _, draw := range draws {
		sources := make([]model.DrawSource, 0, len(draw.Sources))
		for _, s := range draw.Sources {
			sources = append(sources, model.DrawSource{
				Platform: string(s.Platform),
				PostURL:  s.PostURL,
				Required: s.Required,
			})
		}

		resp.Draws = append(resp.Draws, model.DrawSummary{
			DrawID:          draw.ID,
			Status:          string(draw.Status),
			Sources:         sources,
			WinnerCount:     draw.WinnerCount,
			SubstituteCount: draw.SubstituteCount,
			CreatedAt:       draw.CreatedAt.Format(time.RFC3339),
		})
	}

	return resp, nil
}

func (d *drawDomain) GetVerification(
	ctx context.Context, req *model.GetVerificationRequest,
) (*model.GetVerificationResponse, error) {
	if req.VerificationHash != "" {
		var cached model.GetVerificationResponse
		err := d.redisClient.GetObj(ctx, verificationKey(req.VerificationHash), &cached)
		if err == nil {
			return &cached, nil
		}
	}

	execution, err := d.getExecution(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := d.buildVerification(execution.DrawID, &executionResult{execution: execution})
	d.cacheVerification(ctx, resp)
	return resp, nil
}

func (d *drawDomain) getExecution(
	ctx context.Context, req *model.GetVerificationRequest,
) (*entity.DrawExecution, error) {
	var execution *entity.DrawExecution
	var err error
	switch {
	case req.VerificationHash != "":
		execution, err = d.drawRepo.GetExecutionByHash(ctx, req.VerificationHash)
	case req.DrawID != "":
		execution, err = d.drawRepo.GetExecutionByDrawID(ctx, req.DrawID)
	default:
		return nil, errorx.New(errorx.BadRequest, "Require a draw id or a verification hash")
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found execution")
		}

		xcontext.Logger(ctx).Errorf("Cannot get execution: %v", err)
		return nil, errorx.Unknown
	}

	return execution, nil
}

func (d *drawDomain) buildVerification(
	drawID string, result *executionResult,
) *model.GetVerificationResponse {
	execution := result.execution
	return &model.GetVerificationResponse{
		DrawID:                 drawID,
		Seed:                   execution.Seed,
		VerificationHash:       execution.VerificationHash,
		OrderedEligiblePoolIDs: execution.EligiblePool,
		Winners:                modelWinners(execution.Picks, false),
		Substitutes:            modelWinners(execution.Picks, true),
	}
}

func (d *drawDomain) cacheVerification(ctx context.Context, resp *model.GetVerificationResponse) {
	err := d.redisClient.SetObj(
		ctx, verificationKey(resp.VerificationHash), resp, verificationCacheTTL)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache verification: %v", err)
	}
}

func (d *drawDomain) buildResponse(draw *entity.Draw, result *executionResult) *model.RunDrawResponse {
	failed := make([]string, 0, len(result.failedPlatforms))
	for _, p := range result.failedPlatforms {
		failed = append(failed, string(p))
	}

	return &model.RunDrawResponse{
		DrawID:           draw.ID,
		Status:           string(entity.DrawCompleted),
		Seed:             result.execution.Seed,
		VerificationHash: result.execution.VerificationHash,
		Winners:          modelWinners(result.execution.Picks, false),
		Substitutes:      modelWinners(result.execution.Picks, true),
		UnderFilled:      result.execution.UnderFilled,
		FailedPlatforms:  failed,
	}
}

func verificationKey(hash string) string {
	return "verification:" + hash
}

func poolIDs(pool []participant.Participant) entity.Array[string] {
	ids := make(entity.Array[string], 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.ID)
	}

	return ids
}

func entityPicks(picks []selection.Pick) entity.Array[entity.DrawPick] {
	result := make(entity.Array[entity.DrawPick], 0, len(picks))
	for _, pick := range picks {
		result = append(result, entity.DrawPick{
			ParticipantID: pick.Participant.ID,
			MaskedHandle:  entity.MaskHandle(pick.Participant.Handle),
			Rank:          pick.Rank,
			IsSubstitute:  pick.IsSubstitute,
		})
	}

	return result
}

func modelWinners(picks entity.Array[entity.DrawPick], substitute bool) []model.DrawWinner {
	winners := []model.DrawWinner{}
	for _, pick := range picks {
		if pick.IsSubstitute != substitute {
			continue
		}

		winners = append(winners, model.DrawWinner{
			ParticipantID: pick.ParticipantID,
			MaskedHandle:  pick.MaskedHandle,
			Rank:          pick.Rank,
		})
	}

	return winners
}

// acquisitionError maps adapter failures to api error codes, keeping the
// typed errors intact for callers that inspect them.
func acquisitionError(err error) error {
	var rateLimit acquisition.RateLimitExceededError
	if errors.As(err, &rateLimit) {
		return errorx.New(errorx.RateLimitExceeded,
			"Rate limit of %s exceeded, retry after %s", rateLimit.Platform, rateLimit.RetryAfter)
	}

	var authExpired acquisition.AuthExpiredError
	if errors.As(err, &authExpired) {
		return errorx.New(errorx.AuthExpired, "Access token of %s expired", authExpired.Platform)
	}

	var provider acquisition.ProviderError
	if errors.As(err, &provider) {
		if provider.Permanent {
			return errorx.New(errorx.PermanentProvider,
				"Provider %s refused the request with status %d", provider.Platform, provider.StatusCode)
		}

		return errorx.New(errorx.TransientProvider,
			"Provider %s kept failing with status %d", provider.Platform, provider.StatusCode)
	}

	var apiErr errorx.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return errorx.Unknown
}
