// Package retry runs calls to external collaborators with capped exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures Do
type Policy struct {
	// MaxAttempts counts the first call; values below 1 mean a single call
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of each delay that is randomized, in [0, 1]
	Jitter float64
	// Retryable decides whether an error is worth another attempt; nil retries everything
	Retryable func(error) bool
	// OnRetry is called before sleeping
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultPolicy mirrors the external-call budget used throughout the pipeline: six attempts,
// one second growing to twenty
var DefaultPolicy = Policy{
	MaxAttempts: 6,
	BaseDelay:   time.Second,
	MaxDelay:    20 * time.Second,
	Jitter:      0.25,
}

// Permanent wraps err so Do returns it immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, attempts run out, or ctx is done.
// The last error is returned unwrapped from any Permanent marker. A cancelled wait returns the
// last error joined with the context's error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var last error
	op := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}
	}

	err := backoff.RetryNotify(op, p.schedule(ctx), notify)
	if err != nil && last != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return errors.Join(last, ctx.Err())
	}
	return err
}

// schedule builds the backoff sequence for one Do call
func (p Policy) schedule(ctx context.Context) backoff.BackOff {
	attempts := max(p.MaxAttempts, 1)
	if attempts == 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.BaseDelay > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.BaseDelay
		exp.Multiplier = 2
		exp.RandomizationFactor = min(max(p.Jitter, 0), 1)
		exp.MaxInterval = p.MaxDelay
		if exp.MaxInterval <= 0 {
			exp.MaxInterval = time.Duration(math.MaxInt64)
		}
		exp.MaxElapsedTime = 0
		exp.Reset()
		b = exp
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}
