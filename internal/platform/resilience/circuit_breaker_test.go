package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

var errUpstream = errors.New("upstream 503")

func TestCircuitBreaker_ExecuteTripsAndRecovers(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	failing := func(context.Context) error { return errUpstream }
	ok := func(context.Context) error { return nil }

	for i := 0; i < 2; i++ {
		if err := b.Execute(context.Background(), failing, nil); !errors.Is(err, errUpstream) {
			t.Fatalf("attempt %d: expected upstream error, got %v", i, err)
		}
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	}, nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run while the circuit is open")
	}

	now = now.Add(6 * time.Second)
	if err := b.Execute(context.Background(), ok, nil); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreaker_IgnoresNonCountedErrors(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	errBadRequest := errors.New("400 bad request")

	err := b.Execute(context.Background(), func(context.Context) error { return errBadRequest }, func(err error) bool {
		return errors.Is(err, errUpstream)
	})
	if !errors.Is(err, errBadRequest) {
		t.Fatalf("expected bad request error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("non-counted errors must not trip the breaker, got %s", state)
	}
}

func TestCircuitBreaker_NilBreakerPassesThrough(t *testing.T) {
	var b *CircuitBreaker
	if b = NewFromConfig(CircuitBreakerConfig{Enabled: false}); b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	calls := 0
	for i := 0; i < 10; i++ {
		_ = b.Execute(context.Background(), func(context.Context) error {
			calls++
			return errUpstream
		}, nil)
	}
	if calls != 10 {
		t.Fatalf("expected every call to pass through, got %d", calls)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Second, 1)
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_ = b.Execute(context.Background(), func(context.Context) error { return errUpstream }, nil)
	now = now.Add(2 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", state)
	}

	_ = b.Execute(context.Background(), func(context.Context) error { return errUpstream }, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected failed probe to reopen, got %s", state)
	}
}

func TestCircuitBreaker_CancelledCallsAreNotCounted(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(ctx context.Context) error { return ctx.Err() }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("cancellation must not trip the breaker, got %s", state)
	}
}
