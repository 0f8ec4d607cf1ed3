// Package retry provides the bounded retry policy applied to row store
// calls. Only errors accepted by the policy's predicate are retried; every
// other failure propagates immediately.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Policy describes a bounded fixed-delay retry loop.
type Policy struct {
	Retryable   func(error) bool
	Log         zerolog.Logger
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy matches the row store contract: up to 3 attempts with a
// fixed one second delay between them.
func DefaultPolicy(retryable func(error) bool, log zerolog.Logger) Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Retryable:   retryable,
		Log:         log,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, or exhausts
// the attempt budget.
func (p Policy) Do(ctx context.Context, name string, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		p.Log.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", p.Delay).
			Msg("Retryable failure, backing off")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
}
