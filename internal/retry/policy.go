package retry

import (
	"fmt"
	"time"
)

// Policy constants used when no configuration overrides them.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 10 * time.Second
	DefaultGrowthFactor = 1.5
)

// Policy controls how rate-limited calls are retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// GrowthFactor multiplies the delay after every retry.
	GrowthFactor float64
}

// DefaultPolicy returns the policy tuned for per-minute image quotas.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		GrowthFactor: DefaultGrowthFactor,
	}
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", p.MaxRetries)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("initial delay must not be negative, got %s", p.InitialDelay)
	}
	if p.GrowthFactor < 1 {
		return fmt.Errorf("growth factor must be at least 1, got %g", p.GrowthFactor)
	}
	return nil
}

// Delays returns the wait before each retry in order.
func (p Policy) Delays() []time.Duration {
	delays := make([]time.Duration, 0, max(p.MaxRetries, 0))
	delay := p.InitialDelay
	for i := 0; i < p.MaxRetries; i++ {
		delays = append(delays, delay)
		delay = p.next(delay)
	}
	return delays
}

func (p Policy) next(delay time.Duration) time.Duration {
	return time.Duration(float64(delay) * p.GrowthFactor)
}
