package acquisition

import (
	"context"
	"time"

	"github.com/drawlab/backend/internal/entity"
)

// Record is one raw engagement observation fetched from a platform. It is
// immutable and never persisted, the normalizer folds records into
// participants before anything is stored.
type Record struct {
	Platform       entity.Platform
	UserID         string
	Handle         string
	DisplayName    string
	Action         entity.ActionKind
	CommentText    string
	Mentions       []string
	FollowerCount  int
	AccountAgeDays int
	Timestamp      time.Time
}

// Adapter fetches raw engagement of one platform. Implementations keep
// their rate-limit state per instance, scoped to one draw acquisition.
type Adapter interface {
	Platform() entity.Platform

	// ExtractResourceID resolves a post or profile URL to the provider's
	// resource identifier. URL patterns are tried in a fixed priority
	// order, the first match wins.
	ExtractResourceID(rawURL string) (string, error)

	// FetchEngagement returns one page of records. The caller drives
	// pagination by passing the returned cursor back in, starting with an
	// empty cursor and stopping when the returned cursor is empty.
	FetchEngagement(ctx context.Context, resourceID string, kinds []entity.ActionKind, cursor string) ([]Record, string, error)

	// ExtractMentions returns the handles mentioned in a text, in the
	// platform's mention syntax, normalized.
	ExtractMentions(text string) []string

	// NeedsTokenRefresh reports whether the access token is near expiry
	// and must be refreshed before fetching.
	NeedsTokenRefresh() bool
}

// refreshThreshold is the remaining token lifetime under which adapters
// request a refresh.
const refreshThreshold = 7 * 24 * time.Hour

func tokenNeedsRefresh(expiresIn time.Duration) bool {
	return expiresIn < refreshThreshold
}
