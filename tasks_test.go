package conduct

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConstTask(t *testing.T) {
	wf := New("flow").
		Add(ConstTask("seed", map[string]any{"region": "eu", "limit": 10})).
		Build()

	if err := Start(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := wf.Outputs().Get("seed.region"); got != "eu" {
		t.Fatalf("seed.region = %v, want eu", got)
	}
	if got := wf.Outputs().Get("seed.limit"); got != 10 {
		t.Fatalf("seed.limit = %v, want 10", got)
	}
}

func TestSleepTaskCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	wf := New("flow").Add(SleepTask("nap", 5*time.Second)).Build()

	start := time.Now()
	err := Start(ctx, wf)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleep ignored cancellation")
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return map[string]any{"attempts": attempts}, nil
	}

	wf := New("flow").
		Task("flaky", WithRetry(flaky, Retry(5).WithConstantBackoff(time.Millisecond).Policy())).
		Build()

	if err := Start(context.Background(), wf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("task ran %d times, want 3", attempts)
	}
	if got := wf.Outputs().Get("flaky.attempts"); got != 3 {
		t.Fatalf("flaky.attempts = %v, want 3", got)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("permanent")
	attempts := 0
	always := func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		attempts++
		return nil, sentinel
	}

	wf := New("flow").Task("bad", WithRetry(always, Retry(3).Policy())).Build()

	err := Start(context.Background(), wf)
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is lost the cause: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("task ran %d times, want 3", attempts)
	}
}

func TestWithRetryBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	fn := WithRetry(func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		return nil, errors.New("transient")
	}, Retry(10).WithConstantBackoff(time.Hour).Policy())

	start := time.Now()
	_, err := fn(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("backoff sleep ignored cancellation")
	}
}

func TestRetryBuilderDefaults(t *testing.T) {
	p := Retry(0).Policy()
	if p.MaxAttempts != 1 {
		t.Fatalf("MaxAttempts = %d, want 1", p.MaxAttempts)
	}

	p = Retry(4).WithExponentialBackoff(time.Second, 0, time.Minute).Policy()
	if p.BackoffMultiplier != 2.0 {
		t.Fatalf("multiplier = %v, want 2.0 default", p.BackoffMultiplier)
	}
	if p.InitialBackoff != time.Second || p.MaxBackoff != time.Minute {
		t.Fatalf("unexpected policy: %+v", p)
	}
}
