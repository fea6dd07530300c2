package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "igfetch/pkg/errors"
)

func testPolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		BaseDelay:            time.Millisecond,
		MaxDelay:             50 * time.Millisecond,
		ExponentialBase:      2.0,
		Jitter:               false,
		RetryableStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

func TestDelayMonotonic(t *testing.T) {
	p := Policy{
		BaseDelay:       2 * time.Second,
		MaxDelay:        5 * time.Minute,
		ExponentialBase: 2.0,
		Jitter:          false,
	}

	prev := time.Duration(0)
	for attempt := 0; attempt < 10; attempt++ {
		d := Delay(attempt, p, false)
		if d < prev {
			t.Errorf("Delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		prev = d
	}

	// Capped at max delay
	if d := Delay(20, p, false); d != p.MaxDelay {
		t.Errorf("Expected cap at %v, got %v", p.MaxDelay, d)
	}
}

func TestDelayRateLimitAmplification(t *testing.T) {
	p := Policy{
		BaseDelay:       2 * time.Second,
		MaxDelay:        5 * time.Minute,
		ExponentialBase: 2.0,
		Jitter:          false,
	}

	normal := Delay(0, p, false)
	limited := Delay(0, p, true)
	if limited != 5*normal {
		t.Errorf("Expected rate-limited delay %v to be exactly 5x %v", limited, normal)
	}
}

func TestDelayFloor(t *testing.T) {
	p := Policy{
		BaseDelay:       time.Millisecond,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
		Jitter:          false,
	}

	if d := Delay(0, p, false); d < 100*time.Millisecond {
		t.Errorf("Expected floor of 100ms, got %v", d)
	}
}

func TestDelayJitterBounds(t *testing.T) {
	p := Policy{
		BaseDelay:       4 * time.Second,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
		Jitter:          true,
	}

	distinct := make(map[time.Duration]bool)
	for i := 0; i < 50; i++ {
		d := Delay(1, p, false)
		// pre-jitter delay is 8s; jitter is within ±25%
		if d < 6*time.Second || d > 10*time.Second {
			t.Fatalf("Jittered delay %v outside ±25%% of 8s", d)
		}
		distinct[d] = true
	}
	if len(distinct) < 2 {
		t.Error("Expected jitter to produce varying delays")
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeNetwork, "temporary error")
		}
		return nil
	}

	err := Do(context.Background(), op, testPolicy())
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustionCarriesLastError(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeNetwork, "persistent error")
	}

	err := Do(context.Background(), op, testPolicy())
	if err == nil {
		t.Fatal("Expected error when max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeExhausted {
		t.Errorf("Expected exhausted error, got %v", err)
	}

	var cause *errs.Error
	if !errors.As(typed.Cause, &cause) || cause.Type != errs.ErrorTypeNetwork {
		t.Error("Expected exhausted error to carry the last failure as cause")
	}
}

func TestRetryFatalBlockPropagatesImmediately(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeLoginRequired, "redirected to login page")
	}

	err := Do(context.Background(), op, testPolicy())
	if err == nil {
		t.Fatal("Expected error")
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt for a fatal block, got %d", attempts)
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeLoginRequired {
		t.Errorf("Expected the block error unchanged, got %v", err)
	}
}

func TestRetryStatusAllowList(t *testing.T) {
	// 503 is in the allow-list, 403 is not
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeStatus, "service unavailable").WithCode(503)
	}
	_ = Do(context.Background(), op, testPolicy())
	if attempts != 3 {
		t.Errorf("Expected 503 to retry to exhaustion, got %d attempts", attempts)
	}

	attempts = 0
	op = func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeStatus, "forbidden").WithCode(403)
	}
	_ = Do(context.Background(), op, testPolicy())
	if attempts != 1 {
		t.Errorf("Expected 403 to propagate immediately, got %d attempts", attempts)
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := testPolicy()
	p.BaseDelay = 5 * time.Second // force a long sleep after first failure

	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeNetwork, "temporary error")
	}

	done := make(chan error, 1)
	go func() { done <- Do(ctx, op, p) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Expected cancellation error")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled in chain, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retry did not observe cancellation at the backoff suspension point")
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.New(errs.ErrorTypeRetryable, "truncated body")
		}
		return "payload", nil
	}

	got, err := DoWithResult(context.Background(), op, testPolicy())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "payload" {
		t.Errorf("Expected payload, got %q", got)
	}
}
