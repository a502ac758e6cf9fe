// Package retry runs an operation until it succeeds, fails permanently or
// runs out of attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Action tells Do how to treat an error.
type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, use normal backoff
	After               // rate-limited, wait as told by the server
)

// RetryAfterer is implemented by errors that carry a server requested wait.
type RetryAfterer interface {
	RetryAfter() time.Duration
}

// Policy configures Do. A nil Clock means the real clock.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration // used for After when the error has no RetryAfter
	Clock            clockwork.Clock
	OnRetry          func(attempt int, err error, wait time.Duration)
}

type Classify func(err error) Action
type Operation[T any] func() (T, error)

// Do calls op until it returns nil error. Normal retries back off
// exponentially from InitialBackoff, rate limits wait RetryAfter and do not
// touch the exponential backoff.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T

	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		action := classify(err)
		if action == Stop {
			return zero, &PermanentError{Err: err}
		}

		if attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		wait := backoff
		if action == After {
			wait = p.RateLimitBackoff

			var ra RetryAfterer
			if errors.As(err, &ra) {
				wait = ra.RetryAfter()
			}
		} else {
			backoff *= 2
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-clock.After(wait):
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// PermanentError wraps an error that Classify marked as Stop.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
