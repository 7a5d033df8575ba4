package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBusy = errors.New("database is locked")

func isBusy(err error) bool { return errors.Is(err, errBusy) }

func TestDo_SuccessfulFirstAttempt(t *testing.T) {
	var opCalled int
	err := Do(context.Background(), DefaultPolicy(isBusy), func() error {
		opCalled++
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestDo_FailureNotRetryable(t *testing.T) {
	var opCalled int
	expectedErr := errors.New("some other error")
	err := Do(context.Background(), DefaultPolicy(isBusy), func() error {
		opCalled++
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error %v, got %v", expectedErr, err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestDo_ExhaustRetries(t *testing.T) {
	var opCalled int
	p := Policy{MaxRetries: 3, Backoff: time.Millisecond, Retryable: isBusy}
	err := Do(context.Background(), p, func() error {
		opCalled++
		return errBusy
	})
	if !errors.Is(err, errBusy) {
		t.Fatalf("Expected busy error after all retries, got %v", err)
	}
	if opCalled != p.MaxRetries+1 {
		t.Errorf("Expected operation to be called %d times, got %d", p.MaxRetries+1, opCalled)
	}
}

func TestDo_TransientErrorResolves(t *testing.T) {
	var opCalled int
	p := Policy{MaxRetries: 3, Backoff: time.Millisecond, Retryable: isBusy}
	err := Do(context.Background(), p, func() error {
		opCalled++
		if opCalled < 3 {
			return errBusy
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error once the lock clears, got %v", err)
	}
	if opCalled != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", opCalled)
	}
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var opCalled int
	p := Policy{MaxRetries: 5, Backoff: time.Hour, Retryable: isBusy}
	err := Do(ctx, p, func() error {
		opCalled++
		return errBusy
	})
	if !errors.Is(err, errBusy) {
		t.Fatalf("Expected last error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected a single attempt with a cancelled context, got %d", opCalled)
	}
}

func TestNone_NeverRetries(t *testing.T) {
	var opCalled int
	_ = Do(context.Background(), None, func() error {
		opCalled++
		return errBusy
	})
	if opCalled != 1 {
		t.Errorf("Expected 1 call, got %d", opCalled)
	}
}
