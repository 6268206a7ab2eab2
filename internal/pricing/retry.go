package pricing

import (
	"context"
	"time"
)

// RetryPolicy bounds retries with a fixed escalating delay table. The
// number of attempts equals the table length; the delay after failed
// attempt i is Backoffs[i], and the final attempt has no follow-up delay.
// Sleep is injectable so tests run without real waits.
type RetryPolicy struct {
	Backoffs []time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the fallback source's observed rate-limit
// recovery windows.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoffs: []time.Duration{
			500 * time.Millisecond,
			1200 * time.Millisecond,
			2500 * time.Millisecond,
			5 * time.Second,
		},
		Sleep: sleepCtx,
	}
}

// Attempts returns how many tries the policy allows.
func (p RetryPolicy) Attempts() int { return len(p.Backoffs) }

// Wait blocks for the delay that follows the given zero-based attempt.
// It reports false when no attempt remains or the context was cancelled.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) bool {
	if attempt >= len(p.Backoffs)-1 {
		return false
	}
	return p.Sleep(ctx, p.Backoffs[attempt]) == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
