package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	errs "dadoscraper/pkg/errors"
	"dadoscraper/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
		}
		return nil
	}, testConfig(5))

	if err != nil {
		t.Fatalf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	opErr := &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}

	err := Do(func() error {
		calls++
		return opErr
	}, testConfig(3))

	if err == nil {
		t.Fatal("Expected exhaustion error")
	}
	if calls != 3 {
		t.Errorf("Expected exactly 3 calls, got %d", calls)
	}
	if !errors.Is(err, opErr) {
		t.Error("Exhaustion error should wrap the last failure")
	}
	if !strings.Contains(err.Error(), "max retry attempts (3) exceeded") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestDoNoDelayAfterFinalAttempt(t *testing.T) {
	delay := 100 * time.Millisecond
	cfg := testConfig(3)
	cfg.Backoff = &ConstantBackoff{Delay: delay}

	calls := 0
	start := time.Now()
	err := Do(func() error {
		calls++
		return errors.New("transient")
	}, cfg)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected exhaustion error")
	}
	if calls != 3 {
		t.Fatalf("Expected 3 calls, got %d", calls)
	}

	// Three attempts mean two waits between them, never a third after the
	// last failure
	if elapsed < 2*delay {
		t.Errorf("Expected at least %v between attempts, elapsed %v", 2*delay, elapsed)
	}
	if elapsed >= 3*delay {
		t.Errorf("Exhaustion must return without a final delay, elapsed %v for %v waits", elapsed, 2*delay)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	notFound := &errs.Error{Type: errs.ErrorTypeNotFound, Message: "gone"}

	err := Do(func() error {
		calls++
		return notFound
	}, testConfig(5))

	if !errors.Is(err, notFound) {
		t.Fatalf("Expected the original error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Non-retryable error should stop after 1 call, got %d", calls)
	}
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig(5)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Minute}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			calls++
			return errors.New("transient")
		}, cfg)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}

	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
}

func TestDoOnRetryCallback(t *testing.T) {
	var retries []int
	cfg := testConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
	}

	_ = Do(func() error {
		return errors.New("transient")
	}, cfg)

	// Called before each retry: attempts 1 and 2 fail with a retry
	// following, attempt 3 exhausts the budget
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("Expected OnRetry for attempts [1 2], got %v", retries)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "payload", nil
	}, testConfig(3))

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if result != "payload" {
		t.Errorf("Expected payload, got %q", result)
	}
}

func TestRetryAll(t *testing.T) {
	if RetryAll(nil) {
		t.Error("nil error must not be retried")
	}
	if RetryAll(context.Canceled) {
		t.Error("context cancellation must not be retried")
	}
	if RetryAll(context.DeadlineExceeded) {
		t.Error("deadline exceeded must not be retried")
	}
	if !RetryAll(&errs.Error{Type: errs.ErrorTypeNotFound, Message: "gone"}) {
		t.Error("RetryAll should retry even non-retryable error classes")
	}
	if !RetryAll(errors.New("anything")) {
		t.Error("RetryAll should retry arbitrary errors")
	}
}

func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(nil) {
		t.Error("nil error must not be retried")
	}
	if !DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeNetwork, Message: "reset"}) {
		t.Error("network errors should be retried")
	}
	if DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeNotFound, Message: "gone"}) {
		t.Error("not-found errors should not be retried")
	}
	if DefaultRetryIf(context.Canceled) {
		t.Error("context cancellation should not be retried")
	}
	if !DefaultRetryIf(errors.New("unknown")) {
		t.Error("unknown errors default to retryable")
	}
}

func TestRetrierWithMaxAttempts(t *testing.T) {
	base := NewRetrier(testConfig(3))
	stricter := base.WithMaxAttempts(1)

	calls := 0
	_ = stricter.Do(func() error {
		calls++
		return errors.New("transient")
	})
	if calls != 1 {
		t.Errorf("Expected 1 call with the stricter budget, got %d", calls)
	}

	// The original retrier keeps its own budget
	calls = 0
	_ = base.Do(func() error {
		calls++
		return errors.New("transient")
	})
	if calls != 3 {
		t.Errorf("Expected 3 calls with the base budget, got %d", calls)
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 5 * time.Second}

	for attempt := 1; attempt <= 4; attempt++ {
		if got := backoff.NextDelay(attempt); got != 5*time.Second {
			t.Errorf("Attempt %d: expected 5s, got %v", attempt, got)
		}
	}
	if backoff.NextDelay(0) != 0 {
		t.Error("Attempt 0 should have no delay")
	}
}

func TestLinearBackoff(t *testing.T) {
	backoff := &LinearBackoff{
		BaseDelay: time.Second,
		Increment: time.Second,
		MaxDelay:  3 * time.Second,
	}

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, expected := range want {
		if got := backoff.NextDelay(i + 1); got != expected {
			t.Errorf("Attempt %d: expected %v, got %v", i+1, expected, got)
		}
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   4 * time.Second,
		Multiplier: 2.0,
	}

	if got := backoff.NextDelay(1); got != time.Second {
		t.Errorf("Attempt 1: expected 1s, got %v", got)
	}
	if got := backoff.NextDelay(2); got != 2*time.Second {
		t.Errorf("Attempt 2: expected 2s, got %v", got)
	}
	if got := backoff.NextDelay(10); got != 4*time.Second {
		t.Errorf("Attempt 10: expected cap at 4s, got %v", got)
	}
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := Wait(ctx, 0); err != nil {
		t.Errorf("Zero delay should never block or fail, got %v", err)
	}
}
