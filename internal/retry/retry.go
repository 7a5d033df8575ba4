package retry

import (
	"context"
	"time"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// Policy holds retry configuration for calls to the database or the identity store.
type Policy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int

	// Backoff is the delay before the first retry; it doubles on each retry.
	Backoff time.Duration

	// MaxBackoff caps a single delay.
	MaxBackoff time.Duration

	// Retryable reports whether an error is worth another attempt.
	// A nil Retryable never retries.
	Retryable func(error) bool
}

const DefaultMaxRetries = 3

// DefaultPolicy retries retryable errors three times starting at 50ms.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Backoff:    50 * time.Millisecond,
		MaxBackoff: time.Second,
		Retryable:  retryable,
	}
}

// None runs the operation exactly once.
var None = Policy{}

// Do executes op, retrying while p.Retryable accepts the error.
// It attempts the operation up to p.MaxRetries+1 times and stops early when ctx is done.
func Do(ctx context.Context, p Policy, op Operation) error {
	var err error
	delay := p.Backoff
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return err
			case <-t.C:
			}
			delay *= 2
			if p.MaxBackoff > 0 && delay > p.MaxBackoff {
				delay = p.MaxBackoff
			}
		}
	}
	return err
}
