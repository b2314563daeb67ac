package testutil

import (
	"context"

	"github.com/drawlab/backend/internal/domain/acquisition"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/errorx"
)

// MockAdapter serves canned records for one platform. Unset funcs fall
// back to returning all records in a single page.
type MockAdapter struct {
	PlatformValue entity.Platform
	Records       []acquisition.Record

	ExtractResourceIDFunc func(rawURL string) (string, error)
	FetchEngagementFunc   func(ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string) ([]acquisition.Record, string, error)
	ExtractMentionsFunc   func(text string) []string
	NeedsTokenRefreshFunc func() bool
}

func (m *MockAdapter) Platform() entity.Platform {
	return m.PlatformValue
}

func (m *MockAdapter) ExtractResourceID(rawURL string) (string, error) {
	if m.ExtractResourceIDFunc != nil {
		return m.ExtractResourceIDFunc(rawURL)
	}

	if rawURL == "" {
		return "", errorx.New(errorx.InvalidURL, "Cannot recognize the url")
	}

	return rawURL, nil
}

func (m *MockAdapter) FetchEngagement(
	ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string,
) ([]acquisition.Record, string, error) {
	if m.FetchEngagementFunc != nil {
		return m.FetchEngagementFunc(ctx, resourceID, kinds, cursor)
	}

	return m.Records, "", nil
}

func (m *MockAdapter) ExtractMentions(text string) []string {
	if m.ExtractMentionsFunc != nil {
		return m.ExtractMentionsFunc(text)
	}

	return nil
}

func (m *MockAdapter) NeedsTokenRefresh() bool {
	if m.NeedsTokenRefreshFunc != nil {
		return m.NeedsTokenRefreshFunc()
	}

	return false
}
