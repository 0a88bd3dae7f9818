package quota

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/internal/apperrors"
)

// DefaultMaxAttempts bounds how often a quota-refused call is tried.
const DefaultMaxAttempts = 3

// Gate is the part of a tracker the retry loop needs.
type Gate interface {
	CanCall() bool
	TimeUntilReset() time.Duration
	RecordCall(ctx context.Context)
}

// Budget is a gate that also knows which credential to call with.
type Budget interface {
	Gate
	APIKey() string
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier retries quota-refused calls with exponential backoff.
type Retrier struct {
	maxAttempts int
	sleep       Sleeper
	logger      *zap.Logger
}

// NewRetrier creates a retrier. A maxAttempts below 1 means DefaultMaxAttempts.
func NewRetrier(maxAttempts int, sleep Sleeper, logger *zap.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if sleep == nil {
		sleep = SleepContext
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{maxAttempts: maxAttempts, sleep: sleep, logger: logger}
}

// IsRetryable reports whether err is a 429 or 402 from the provider.
func IsRetryable(err error) bool {
	var perr *apperrors.ProviderError
	return errors.As(err, &perr) && apperrors.IsQuotaStatus(perr.StatusCode)
}

// Do runs op under gate. When the window is spent it first waits for the
// reset. Quota refusals are retried after 2^n seconds; anything else is
// returned at once.
func Do[T any](ctx context.Context, r *Retrier, gate Gate, op func(context.Context) (T, error)) (T, error) {
	var zero T
	retries := 0

	for {
		if !gate.CanCall() {
			wait := gate.TimeUntilReset()
			r.logger.Warn("rate limit reached, waiting for reset", zap.Duration("wait", wait))
			if err := r.sleep(ctx, wait); err != nil {
				return zero, err
			}
		}

		gate.RecordCall(ctx)

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		retries++
		if !IsRetryable(err) || retries >= r.maxAttempts {
			return zero, err
		}

		backoff := time.Duration(1<<retries) * time.Second
		r.logger.Warn("provider call refused, retrying",
			zap.Int("attempt", retries),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if err := r.sleep(ctx, backoff); err != nil {
			return zero, err
		}
	}
}
