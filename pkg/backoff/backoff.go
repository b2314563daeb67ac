package backoff

import (
	"context"
	"time"
)

// Policy is a retry policy with exponential delays. The delay before the
// n-th retry (zero based) is Base * Multiplier^n.
type Policy struct {
	Base        time.Duration
	Multiplier  int
	MaxAttempts int
}

// DefaultPolicy retries three times with delays of 1s, 2s and 4s.
var DefaultPolicy = Policy{
	Base:        time.Second,
	Multiplier:  2,
	MaxAttempts: 3,
}

// Delay returns the wait interval before the given retry attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= time.Duration(p.Multiplier)
	}

	return d
}

// Wait sleeps for the delay of the given attempt. It returns early with the
// context error if the context is cancelled while waiting.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
