package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards one outbound dependency. It opens after
// failureThreshold consecutive failures, rejects calls for openTimeout, then
// admits up to probes concurrent calls. All probes succeeding closes it; any
// probe failing reopens it.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	probes           int

	state     CircuitState
	failures  int
	openedAt  time.Time
	inFlight  int
	succeeded int
	now       func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, probes int) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: max(failureThreshold, 1),
		openTimeout:      orDefault(openTimeout, 15*time.Second),
		probes:           max(probes, 1),
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

func orDefault(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

// Execute runs fn when the breaker admits it. countsAsFailure decides which
// errors count against the dependency; nil counts every error. A call that
// ends because ctx was cancelled is not counted either way.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error, countsAsFailure func(error) bool) error {
	if b == nil {
		return fn(ctx)
	}
	probe, err := b.admit()
	if err != nil {
		return err
	}

	err = fn(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		b.settle(probe, outcomeAbandoned)
	case err != nil && (countsAsFailure == nil || countsAsFailure(err)):
		b.settle(probe, outcomeFailure)
	default:
		b.settle(probe, outcomeSuccess)
	}
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateOpen && b.cooledDown() {
		return CircuitStateHalfOpen
	}
	return b.state
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeAbandoned
)

// admit reports whether the call is a half-open probe.
func (b *CircuitBreaker) admit() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if !b.cooledDown() {
			return false, ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.inFlight, b.succeeded = 0, 0
	}
	if b.state != CircuitStateHalfOpen {
		return false, nil
	}
	if b.inFlight >= b.probes {
		return false, ErrCircuitOpen
	}
	b.inFlight++
	return true, nil
}

func (b *CircuitBreaker) settle(probe bool, result outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe && b.state == CircuitStateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}

	switch {
	case result == outcomeAbandoned:
	case result == outcomeFailure && b.state == CircuitStateHalfOpen:
		b.trip()
	case result == outcomeFailure:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.trip()
		}
	case probe && b.state == CircuitStateHalfOpen:
		b.succeeded++
		if b.succeeded >= b.probes && b.inFlight == 0 {
			b.state = CircuitStateClosed
			b.failures, b.succeeded = 0, 0
			b.openedAt = time.Time{}
		}
	default:
		b.failures = 0
	}
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.inFlight, b.succeeded = 0, 0
}

func (b *CircuitBreaker) cooledDown() bool {
	return b.now().Sub(b.openedAt) >= b.openTimeout
}
