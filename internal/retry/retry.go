// Package retry implements bounded exponential backoff with jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config controls how Do spaces out attempts.
type Config struct {
	// MaxRetries is the number of retries allowed after the first attempt.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// Multiplier grows the delay after every failed attempt.
	Multiplier float64
	// JitterFraction randomizes each delay by up to +/- this fraction.
	JitterFraction float64
}

// DefaultConfig returns the policy used for network-facing calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
// Classifiers live next to the code that produces the errors; the
// default only rules out context cancellation.
type ErrorClassifier func(error) bool

func defaultClassifier(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do runs fn, retrying transient failures until the attempt budget is
// spent. Permanent errors (per classify) return immediately; once the
// budget runs out the last error is returned wrapped.
func Do(ctx context.Context, cfg Config, classify ErrorClassifier, fn func(context.Context) error) error {
	if classify == nil {
		classify = defaultClassifier
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !classify(err) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, lastErr)
		}

		select {
		case <-time.After(backoffFor(cfg, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// backoffFor computes the jittered delay preceding retry attempt+1.
func backoffFor(cfg Config, attempt int) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if cfg.JitterFraction > 0 {
		d += (rand.Float64()*2 - 1) * cfg.JitterFraction * d
	}
	if limit := float64(cfg.MaxBackoff); d > limit {
		d = limit
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
