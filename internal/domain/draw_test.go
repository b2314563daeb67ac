package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/drawlab/backend/internal/domain"
	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/testutil"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type drawTestEnv struct {
	domain       domain.DrawDomain
	creditDomain domain.CreditDomain
	publisher    *testutil.MockPublisher
	redisClient  *testutil.InMemoryRedisClient
}

func newDrawTestEnv(adapters ...acquisition.Adapter) *drawTestEnv {
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())
	publisher := &testutil.MockPublisher{}
	redisClient := testutil.NewInMemoryRedisClient()

	return &drawTestEnv{
		domain: domain.NewDrawDomain(
			repository.NewDrawRepository(),
			repository.NewBlacklistRepository(),
			creditDomain,
			acquisition.NewAggregator(adapters...),
			redisClient,
			publisher,
		),
		creditDomain: creditDomain,
		publisher:    publisher,
		redisClient:  redisClient,
	}
}

func instagramAdapter(records ...acquisition.Record) *testutil.MockAdapter {
	return &testutil.MockAdapter{PlatformValue: entity.Instagram, Records: records}
}

func runDrawRequest() *model.RunDrawRequest {
	return &model.RunDrawRequest{
		Platform:        "instagram",
		PostURL:         "https://www.instagram.com/p/abc123",
		WinnerCount:     1,
		SubstituteCount: 1,
		Seed:            "seed123",
	}
}

func Test_RunDraw_HappyPath(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 2)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
		testutil.SampleRecord(entity.Instagram, "u2", "bob"),
		testutil.SampleRecord(entity.Instagram, "u3", "carol"),
	))

	resp, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	require.Equal(t, "completed", resp.Status)
	require.Equal(t, "seed123", resp.Seed)
	require.NotEmpty(t, resp.VerificationHash)
	require.Len(t, resp.Winners, 1)
	require.Len(t, resp.Substitutes, 1)
	require.False(t, resp.UnderFilled)
	require.NotEqual(t, resp.Winners[0].ParticipantID, resp.Substitutes[0].ParticipantID)

	// One credit was debited.
	balance, err := env.creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), balance.Balance)

	// The completed event went out.
	published := env.publisher.Published(model.DrawCompletedTopic)
	require.Len(t, published, 1)

	var event model.DrawCompletedEvent
	require.NoError(t, json.Unmarshal(published[0].Msg, &event))
	require.Equal(t, resp.DrawID, event.DrawID)
	require.Equal(t, resp.VerificationHash, event.VerificationHash)
}

func Test_RunDraw_MasksHandles(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	req := runDrawRequest()
	req.SubstituteCount = 0

	resp, err := env.domain.RunDraw(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Winners, 1)
	require.Equal(t, entity.MaskHandle("alice"), resp.Winners[0].MaskedHandle)
}

func Test_RunDraw_DeterministicAcrossDraws(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 2)

	records := []acquisition.Record{
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
		testutil.SampleRecord(entity.Instagram, "u2", "bob"),
		testutil.SampleRecord(entity.Instagram, "u3", "carol"),
		testutil.SampleRecord(entity.Instagram, "u4", "dave"),
	}

	env := newDrawTestEnv(instagramAdapter(records...))

	first, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	second, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	// Same seed and same ordered pool give the same picks, even though the
	// two draws have different ids and hashes.
	require.Equal(t, first.Winners, second.Winners)
	require.Equal(t, first.Substitutes, second.Substitutes)
	require.NotEqual(t, first.VerificationHash, second.VerificationHash)
}

func Test_RunDraw_InsufficientCredits(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	_, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientCredits})

	// The draw stays pending so it can be retried after a top up.
	draws, err := env.domain.GetMyDraws(ctx, &model.GetMyDrawsRequest{})
	require.NoError(t, err)
	require.Len(t, draws.Draws, 1)
	require.Equal(t, "pending", draws.Draws[0].Status)

	testutil.GrantCredits(ctx, "owner1", 1)

	resp, err := env.domain.RunDraw(ctx, &model.RunDrawRequest{DrawID: draws.Draws[0].DrawID})
	require.NoError(t, err)
	require.Equal(t, "completed", resp.Status)
}

func Test_RunDraw_BalanceDrainedDuringExecutionStaysPending(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	adapter := instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	)
	env := newDrawTestEnv(adapter)

	// Another draw takes the owner's last credit while this one is
	// fetching, so the debit after selection fails despite the precheck.
	adapter.FetchEngagementFunc = func(
		ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
	) ([]acquisition.Record, string, error) {
		err := env.creditDomain.DebitForDraw(ctx, "owner1", "otherdraw", 1)
		require.NoError(t, err)
		return adapter.Records, "", nil
	}

	_, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientCredits})

	draws, err := env.domain.GetMyDraws(ctx, &model.GetMyDrawsRequest{})
	require.NoError(t, err)
	require.Len(t, draws.Draws, 1)
	require.Equal(t, "pending", draws.Draws[0].Status)

	adapter.FetchEngagementFunc = nil
	testutil.GrantCredits(ctx, "owner1", 1)

	resp, err := env.domain.RunDraw(ctx, &model.RunDrawRequest{DrawID: draws.Draws[0].DrawID})
	require.NoError(t, err)
	require.Equal(t, "completed", resp.Status)
}

func Test_RunDraw_AlreadyExecuted(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 5)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	resp, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	_, err = env.domain.RunDraw(ctx, &model.RunDrawRequest{DrawID: resp.DrawID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyExecuted})
}

func Test_RunDraw_AcquisitionFailureMarksFailed(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 2)

	env := newDrawTestEnv(&testutil.MockAdapter{
		PlatformValue: entity.Instagram,
		FetchEngagementFunc: func(
			ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
		) ([]acquisition.Record, string, error) {
			return nil, "", acquisition.ProviderError{Platform: entity.Instagram, StatusCode: 502}
		},
	})

	req := runDrawRequest()
	req.Sources = []model.DrawSource{
		{Platform: "instagram", PostURL: req.PostURL, Required: true},
	}

	_, err := env.domain.RunDraw(ctx, req)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.TransientProvider})

	draws, err := env.domain.GetMyDraws(ctx, &model.GetMyDrawsRequest{})
	require.NoError(t, err)
	require.Len(t, draws.Draws, 1)
	require.Equal(t, "failed", draws.Draws[0].Status)

	// Nothing was debited and nothing was published.
	balance, err := env.creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), balance.Balance)
	require.Empty(t, env.publisher.Published(model.DrawCompletedTopic))
}

func Test_RunDraw_BlacklistExcludes(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
		testutil.SampleRecord(entity.Instagram, "u2", "bob"),
	))

	req := runDrawRequest()
	req.WinnerCount = 2
	req.SubstituteCount = 0
	req.Blacklist = []string{" @Alice "}

	resp, err := env.domain.RunDraw(ctx, req)
	require.NoError(t, err)

	require.Len(t, resp.Winners, 1)
	require.Equal(t, entity.MaskHandle("bob"), resp.Winners[0].MaskedHandle)
	require.True(t, resp.UnderFilled)
}

func Test_RunDraw_UnderFilled(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	req := runDrawRequest()
	req.WinnerCount = 3
	req.SubstituteCount = 2

	resp, err := env.domain.RunDraw(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.UnderFilled)
	require.Len(t, resp.Winners, 1)
	require.Empty(t, resp.Substitutes)
}

func Test_RunDraw_InvalidRequest(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	env := newDrawTestEnv(instagramAdapter())

	req := runDrawRequest()
	req.WinnerCount = 0
	_, err := env.domain.RunDraw(ctx, req)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	req = runDrawRequest()
	req.Platform = "myspace"
	_, err = env.domain.RunDraw(ctx, req)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	req = runDrawRequest()
	req.PostURL = ""
	_, err = env.domain.RunDraw(ctx, req)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func Test_RunDraw_UnknownPlatformSource(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")

	// No adapters registered at all.
	env := newDrawTestEnv()

	_, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}

func Test_GetVerification(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
		testutil.SampleRecord(entity.Instagram, "u2", "bob"),
	))

	resp, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	byHash, err := env.domain.GetVerification(ctx, &model.GetVerificationRequest{
		VerificationHash: resp.VerificationHash,
	})
	require.NoError(t, err)
	require.Equal(t, resp.DrawID, byHash.DrawID)
	require.Equal(t, resp.Seed, byHash.Seed)
	require.Len(t, byHash.OrderedEligiblePoolIDs, 2)
	require.Equal(t, resp.Winners, byHash.Winners)

	byDrawID, err := env.domain.GetVerification(ctx, &model.GetVerificationRequest{
		DrawID: resp.DrawID,
	})
	require.NoError(t, err)
	require.Equal(t, byHash, byDrawID)
}

func Test_GetVerification_ServedFromCache(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	resp, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	cached, err := env.redisClient.Exist(ctx, "verification:"+resp.VerificationHash)
	require.NoError(t, err)
	require.True(t, cached)
}

func Test_GetVerification_NotFound(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	env := newDrawTestEnv()

	_, err := env.domain.GetVerification(ctx, &model.GetVerificationRequest{
		VerificationHash: "deadbeef",
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})

	_, err = env.domain.GetVerification(ctx, &model.GetVerificationRequest{})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func Test_RunDraw_OtherOwnersDraw(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	testutil.GrantCredits(ctx, "owner1", 1)

	env := newDrawTestEnv(instagramAdapter(
		testutil.SampleRecord(entity.Instagram, "u1", "alice"),
	))

	resp, err := env.domain.RunDraw(ctx, runDrawRequest())
	require.NoError(t, err)

	otherCtx := xcontext.WithRequestUserID(ctx, "owner2")
	_, err = env.domain.RunDraw(otherCtx, &model.RunDrawRequest{DrawID: resp.DrawID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.PermissionDenied})
}
