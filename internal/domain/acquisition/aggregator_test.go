package acquisition_test

import (
	"context"
	"testing"

	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var likeAndComment = []entity.ActionKind{entity.ActionLike, entity.ActionComment}

func Test_Aggregator_SingleSource(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator(&testutil.MockAdapter{
		PlatformValue: entity.Instagram,
		Records: []acquisition.Record{
			testutil.SampleRecord(entity.Instagram, "u1", "alice"),
			testutil.SampleRecord(entity.Instagram, "u2", "bob"),
		},
	})

	result, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
	}, likeAndComment)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Empty(t, result.FailedPlatforms)
}

func Test_Aggregator_ConcatenatesInSourceOrder(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator(
		&testutil.MockAdapter{
			PlatformValue: entity.Instagram,
			Records:       []acquisition.Record{testutil.SampleRecord(entity.Instagram, "u1", "alice")},
		},
		&testutil.MockAdapter{
			PlatformValue: entity.Twitter,
			Records:       []acquisition.Record{testutil.SampleRecord(entity.Twitter, "u2", "bob")},
		},
	)

	result, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Twitter, PostURL: "https://twitter.com/a/status/1"},
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc"},
	}, likeAndComment)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, entity.Twitter, result.Records[0].Platform)
	require.Equal(t, entity.Instagram, result.Records[1].Platform)
}

func Test_Aggregator_RequiredSourceFailureAborts(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator(&testutil.MockAdapter{
		PlatformValue: entity.Instagram,
		FetchEngagementFunc: func(
			ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
		) ([]acquisition.Record, string, error) {
			return nil, "", acquisition.ProviderError{Platform: entity.Instagram, StatusCode: 502}
		},
	})

	_, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
	}, likeAndComment)
	require.Error(t, err)

	var provider acquisition.ProviderError
	require.ErrorAs(t, err, &provider)
}

func Test_Aggregator_NonRequiredSourceDegrades(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator(
		&testutil.MockAdapter{
			PlatformValue: entity.Instagram,
			Records:       []acquisition.Record{testutil.SampleRecord(entity.Instagram, "u1", "alice")},
		},
		&testutil.MockAdapter{
			PlatformValue: entity.Twitter,
			FetchEngagementFunc: func(
				ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
			) ([]acquisition.Record, string, error) {
				return nil, "", acquisition.ProviderError{Platform: entity.Twitter, StatusCode: 503}
			},
		},
	)

	result, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
		{Platform: entity.Twitter, PostURL: "https://twitter.com/a/status/1"},
	}, likeAndComment)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, []entity.Platform{entity.Twitter}, result.FailedPlatforms)
}

func Test_Aggregator_ExpiredTokenFails(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator(&testutil.MockAdapter{
		PlatformValue:         entity.Instagram,
		NeedsTokenRefreshFunc: func() bool { return true },
	})

	_, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
	}, likeAndComment)

	var authExpired acquisition.AuthExpiredError
	require.ErrorAs(t, err, &authExpired)
}

func Test_Aggregator_UnknownPlatform(t *testing.T) {
	ctx := testutil.MockContext()

	aggregator := acquisition.NewAggregator()
	_, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
	}, likeAndComment)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}

func Test_Aggregator_Pagination(t *testing.T) {
	ctx := testutil.MockContext()

	pages := map[string][]acquisition.Record{
		"":   {testutil.SampleRecord(entity.Instagram, "u1", "alice")},
		"0|": {testutil.SampleRecord(entity.Instagram, "u2", "bob")},
	}
	next := map[string]string{"": "0|", "0|": ""}

	aggregator := acquisition.NewAggregator(&testutil.MockAdapter{
		PlatformValue: entity.Instagram,
		FetchEngagementFunc: func(
			ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
		) ([]acquisition.Record, string, error) {
			return pages[cursor], next[cursor], nil
		},
	})

	result, err := aggregator.Fetch(ctx, []entity.DrawSource{
		{Platform: entity.Instagram, PostURL: "https://www.instagram.com/p/abc", Required: true},
	}, likeAndComment)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, "u1", result.Records[0].UserID)
	require.Equal(t, "u2", result.Records[1].UserID)
}
