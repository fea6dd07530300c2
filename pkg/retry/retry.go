package retry

import (
	"context"
	"errors"
	"time"

	errs "igfetch/pkg/errors"
	"igfetch/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func(ctx context.Context) error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func(ctx context.Context) (T, error)

// Policy holds the retry configuration for one invocation. It is a plain
// value; callers supply it per call and never mutate a shared instance.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// BaseDelay is the starting backoff delay
	BaseDelay time.Duration
	// MaxDelay caps the computed delay before jitter
	MaxDelay time.Duration
	// ExponentialBase is the growth factor between attempts
	ExponentialBase float64
	// Jitter perturbs each delay by up to ±25% when enabled
	Jitter bool
	// RetryableStatusCodes is the allow-list of HTTP statuses worth retrying
	RetryableStatusCodes []int
}

// DefaultPolicy returns a policy with sensible defaults
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          5,
		BaseDelay:            2 * time.Second,
		MaxDelay:             5 * time.Minute,
		ExponentialBase:      2.0,
		Jitter:               true,
		RetryableStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// OnRetry is called before each backoff sleep
type OnRetry func(attempt int, err error, delay time.Duration)

func (p Policy) statusRetryable(code int) bool {
	for _, c := range p.RetryableStatusCodes {
		if c == code {
			return true
		}
	}
	return false
}

// classify decides whether an attempt's failure is worth another attempt
// and whether it came from rate limiting. Fatal blocks, parse failures,
// context errors, and status codes outside the policy's allow-list all
// propagate immediately.
func classify(err error, p Policy) (retryable bool, rateLimited bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case errs.ErrorTypeStatus:
			return p.statusRetryable(apiErr.Code), apiErr.Code == 429
		case errs.ErrorTypeRateLimit:
			return true, true
		case errs.ErrorTypeNetwork, errs.ErrorTypeRetryable:
			return true, false
		default:
			return false, false
		}
	}

	// Untyped errors are treated as fatal; the client wraps everything
	// it wants retried.
	return false, false
}

// Do executes an operation with retry logic. The last observed failure is
// never swallowed: exhaustion surfaces it wrapped as an exhausted error.
func Do(ctx context.Context, op Operation, p Policy) error {
	log := logger.GetLogger()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt + 1,
				})
			}
			return nil
		}
		lastErr = err

		retryable, rateLimited := classify(err, p)
		if !retryable {
			log.DebugWithFields("error is not retryable", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := Delay(attempt, p, rateLimited)
		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt + 1,
			"max_attempts": p.MaxAttempts,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"rate_limited": rateLimited,
		})

		if err := Wait(ctx, delay); err != nil {
			return errs.Wrap(errs.ErrorTypeUnknown, "retry cancelled", err)
		}
	}

	log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
		"attempts":   p.MaxAttempts,
		"last_error": lastErr.Error(),
	})
	return errs.Wrap(errs.ErrorTypeExhausted,
		"max retry attempts exceeded", lastErr)
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op OperationWithResult[T], p Policy) (T, error) {
	var result T

	err := Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, p)

	return result, err
}

// Wait sleeps for the given duration or until the context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
