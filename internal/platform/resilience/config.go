package resilience

import "time"

// CircuitBreakerConfig is the env-facing breaker configuration shared by the
// oracle and football data adapters.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NewFromConfig builds a breaker, or nil when the config disables it. A nil
// breaker lets every call through. Unset numeric fields take the defaults.
func NewFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
}
