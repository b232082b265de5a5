package conduct

import (
	"context"
	"time"

	"github.com/petrijr/conduct/pkg/api"
)

// SleepTask returns a task that waits for the given duration and
// produces no outputs.
//
// It is context-aware: if the context is cancelled during the sleep, it
// returns ctx.Err and the workflow fails at this task.
func SleepTask(name string, d time.Duration) *Task {
	return api.NewTask(name, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		if d <= 0 {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
			return nil, nil
		}
	})
}

// ConstTask returns a task that publishes a fixed output map. Useful for
// seeding the namespace and in tests.
func ConstTask(name string, outputs map[string]any) *Task {
	return api.NewTask(name, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return outputs, nil
	})
}

// RetryPolicy controls how a task body is retried by WithRetry.
// MaxAttempts includes the first attempt:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
//
// The engine itself never retries anything; retry is the task body's own
// concern, and WithRetry is the convenience for it.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// RetryBuilder provides a fluent way to construct RetryPolicy values.
type RetryBuilder struct {
	policy RetryPolicy
}

// Retry creates a RetryBuilder with the given maxAttempts.
// maxAttempts <= 0 is treated as 1 (no retries).
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{policy: RetryPolicy{MaxAttempts: maxAttempts}}
}

// WithExponentialBackoff configures exponential backoff:
//
//   - initial is the delay before the first retry.
//   - multiplier > 1 grows the delay each attempt (default 2.0 if <= 0).
//   - max caps the delay; if <= 0, there is no cap.
func (r RetryBuilder) WithExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = initial
	p.MaxBackoff = max
	if multiplier <= 0 {
		multiplier = 2.0
	}
	p.BackoffMultiplier = multiplier
	return RetryBuilder{policy: p}
}

// WithConstantBackoff configures a constant delay between retries.
func (r RetryBuilder) WithConstantBackoff(delay time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = delay
	p.MaxBackoff = 0
	p.BackoffMultiplier = 1.0
	return RetryBuilder{policy: p}
}

// Policy returns the underlying RetryPolicy.
func (r RetryBuilder) Policy() RetryPolicy {
	return r.policy
}

// WithRetry wraps a task body so that it is re-invoked on failure
// according to policy. Backoff sleeps respect context cancellation.
func WithRetry(fn TaskFunc, policy RetryPolicy) TaskFunc {
	return func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		maxAttempts := policy.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = 1
		}
		backoff := policy.InitialBackoff
		multiplier := policy.BackoffMultiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}

		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			out, err := fn(ctx, inputs)
			if err == nil {
				return out, nil
			}
			lastErr = err

			if attempt == maxAttempts {
				break
			}
			if backoff > 0 {
				delay := backoff
				if policy.MaxBackoff > 0 && delay > policy.MaxBackoff {
					delay = policy.MaxBackoff
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				backoff = time.Duration(float64(backoff) * multiplier)
			}
		}
		return nil, lastErr
	}
}
