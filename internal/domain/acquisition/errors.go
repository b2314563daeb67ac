package acquisition

import (
	"fmt"
	"time"

	"github.com/drawlab/backend/internal/entity"
)

// RateLimitExceededError is returned after the rate-limit retry budget of a
// page request is exhausted. RetryAfter is the wait computed from the
// provider's reset information or from the backoff policy.
type RateLimitExceededError struct {
	Platform   entity.Platform
	RetryAfter time.Duration
}

func (e RateLimitExceededError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded, retry after %v", e.Platform, e.RetryAfter)
}

// ProviderError is a provider failure that is not a rate limit. Permanent
// errors are surfaced to the caller, transient ones have already been
// retried.
type ProviderError struct {
	Platform   entity.Platform
	StatusCode int
	Permanent  bool
}

func (e ProviderError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}

	return fmt.Sprintf("%s %s provider error (status %d)", e.Platform, kind, e.StatusCode)
}

// AuthExpiredError reports an access token at or near expiry. The token
// refresh itself happens outside of acquisition.
type AuthExpiredError struct {
	Platform entity.Platform
}

func (e AuthExpiredError) Error() string {
	return fmt.Sprintf("%s access token expired or near expiry", e.Platform)
}
