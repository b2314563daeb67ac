package acquisition

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drawlab/backend/config"
	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/api"
	"github.com/drawlab/backend/pkg/backoff"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

// baseAdapter carries the shared plumbing of all platform adapters: the
// authenticated HTTP client, the retry policy and the per-resource
// rate-limit reset times observed during this acquisition.
type baseAdapter struct {
	platform     entity.Platform
	cfg          config.PlatformConfigs
	policy       backoff.Policy
	apiGenerator api.Generator
	resetAt      *xsync.MapOf[string, time.Time]
}

func newBaseAdapter(platform entity.Platform, cfg config.PlatformConfigs, policy backoff.Policy) baseAdapter {
	return baseAdapter{
		platform:     platform,
		cfg:          cfg,
		policy:       policy,
		apiGenerator: api.NewGenerator(),
		resetAt:      xsync.NewMapOf[time.Time](),
	}
}

func (a *baseAdapter) Platform() entity.Platform {
	return a.platform
}

func (a *baseAdapter) NeedsTokenRefresh() bool {
	return tokenNeedsRefresh(a.cfg.TokenExpiresIn)
}

func (a *baseAdapter) pageSize() int {
	if a.cfg.PageSize <= 0 {
		return 50
	}

	return a.cfg.PageSize
}

// get performs an authenticated GET of one page, honoring a previously
// observed rate-limit reset for the resource and retrying per policy.
func (a *baseAdapter) get(ctx context.Context, resourceID, path string, query api.Parameter) (*api.Response, error) {
	if resetAt, ok := a.resetAt.Load(resourceID); ok {
		if wait := time.Until(resetAt); wait > 0 {
			if err := waitFor(ctx, wait); err != nil {
				return nil, err
			}
		}

		a.resetAt.Delete(resourceID)
	}

	resp, err := callWithRetry(ctx, a.platform, a.policy, func(ctx context.Context) (*api.Response, error) {
		return a.apiGenerator.New(a.cfg.APIEndpoint, path).
			Query(query).
			GET(ctx, api.OAuth2("Bearer", a.cfg.AccessToken))
	})

	var rateLimited RateLimitExceededError
	if errors.As(err, &rateLimited) {
		a.resetAt.Store(resourceID, time.Now().Add(rateLimited.RetryAfter))
	}

	return resp, err
}

// callWithRetry classifies provider responses and retries transient ones.
// Rate-limited requests wait for the provider-supplied reset when present,
// otherwise for the policy delay, and fail with RateLimitExceededError once
// the retry budget is spent.
func callWithRetry(
	ctx context.Context,
	platform entity.Platform,
	policy backoff.Policy,
	do func(context.Context) (*api.Response, error),
) (*api.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := do(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			if attempt >= policy.MaxAttempts {
				return nil, ProviderError{Platform: platform, Permanent: false}
			}

			if err := policy.Wait(ctx, attempt); err != nil {
				return nil, err
			}

			continue
		}

		switch {
		case resp.Code == http.StatusTooManyRequests:
			wait, ok := providerRetryAfter(resp)
			if !ok {
				wait = policy.Delay(attempt)
			}

			if attempt >= policy.MaxAttempts {
				return nil, RateLimitExceededError{Platform: platform, RetryAfter: wait}
			}

			xcontext.Logger(ctx).Debugf("Rate limited by %s, waiting %v", platform, wait)
			if err := waitFor(ctx, wait); err != nil {
				return nil, err
			}

		case resp.Code == http.StatusUnauthorized:
			return nil, AuthExpiredError{Platform: platform}

		case resp.Code >= 500:
			if attempt >= policy.MaxAttempts {
				return nil, ProviderError{Platform: platform, StatusCode: resp.Code, Permanent: false}
			}

			if err := policy.Wait(ctx, attempt); err != nil {
				return nil, err
			}

		case resp.Code >= 400:
			return nil, ProviderError{Platform: platform, StatusCode: resp.Code, Permanent: true}

		default:
			return resp, nil
		}
	}
}

func providerRetryAfter(resp *api.Response) (time.Duration, bool) {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, true
		}
	}

	if s := resp.Header.Get("X-RateLimit-Reset"); s != "" {
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			if wait := time.Until(time.Unix(epoch, 0)); wait > 0 {
				return wait, true
			}
		}
	}

	return 0, false
}

func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Engagement endpoints are split per action kind on every platform, so the
// adapter cursor embeds which kind is currently being paginated:
// "<kind index>|<provider cursor>". An empty cursor starts at the first
// kind, an empty returned cursor means the sequence is exhausted.
func splitKindCursor(cursor string, kinds []entity.ActionKind) (int, string, error) {
	if cursor == "" {
		return 0, "", nil
	}

	idx, providerCursor, found := strings.Cut(cursor, "|")
	if !found {
		return 0, "", fmt.Errorf("malformed cursor %q", cursor)
	}

	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(kinds) {
		return 0, "", fmt.Errorf("malformed cursor %q", cursor)
	}

	return i, providerCursor, nil
}

func nextKindCursor(kindIdx int, providerCursor string, kinds []entity.ActionKind) string {
	if providerCursor != "" {
		return strconv.Itoa(kindIdx) + "|" + providerCursor
	}

	if kindIdx+1 < len(kinds) {
		return strconv.Itoa(kindIdx+1) + "|"
	}

	return ""
}
