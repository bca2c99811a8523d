package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"resume-enhancer/internal/shared/telemetry"
)

// RetryPolicy configures exponential backoff for rate-limited requests.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep waits for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before every backoff wait.
	OnRetry func(name string, attempt int, delay time.Duration, err error)
}

// DefaultRetryPolicy waits 1s, 2s, 4s, 8s between five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}
}

type retryingCompleter struct {
	next   Completer
	policy RetryPolicy
}

// WithRetry wraps c so rate-limited requests are retried with exponential
// backoff. Other errors are returned immediately.
func WithRetry(c Completer, policy RetryPolicy) Completer {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = time.Second
	}
	if policy.Sleep == nil {
		policy.Sleep = sleepContext
	}
	return &retryingCompleter{next: c, policy: policy}
}

func (r *retryingCompleter) CompleteJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		raw, err := r.next.CompleteJSON(ctx, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !IsRateLimited(err) || attempt == r.policy.MaxAttempts {
			break
		}

		delay := r.policy.BaseDelay << (attempt - 1)
		telemetry.Warn("llm.rate_limited", map[string]any{
			"prompt":   req.Name,
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
		})
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(req.Name, attempt, delay, err)
		}
		if err := r.policy.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// IsRateLimited reports whether err signals quota exhaustion.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resource exhausted")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
