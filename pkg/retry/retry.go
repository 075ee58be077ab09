// Package retry implements bounded retries with exponential backoff
// and jitter for the network-facing parts of outfit.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
)

// Config controls retry behavior.
type Config struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// BaseDelay is the delay before the second attempt; it doubles on
	// each subsequent failure.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Retryable decides whether a given error is worth retrying.
	// Nil means every error is retryable.
	Retryable func(error) bool
}

// DefaultConfig matches the behavior of the shell retry helpers:
// three attempts starting at one second.
func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
	}
}

// Do runs fn until it succeeds, retries are exhausted, or the context
// is canceled. The last error is returned.
func Do(ctx context.Context, cfg Config, operation string, fn func() error) error {
	logger := logging.GetLogger("retry")

	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}

	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, errors.ErrTimeout, "%s canceled", operation)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.Attempts {
			break
		}

		sleep := jitter(delay)
		logger.Warn().
			Err(lastErr).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("backoff", sleep).
			Msg("Attempt failed, backing off")

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), errors.ErrTimeout, "%s canceled during backoff", operation)
		case <-time.After(sleep):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}

// jitter spreads the delay over [delay/2, delay) to avoid lockstep
// retries during parallel image builds.
func jitter(delay time.Duration) time.Duration {
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
