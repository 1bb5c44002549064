package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/generation"
)

// Operation is a single external call.
type Operation[T any] func(ctx context.Context) (T, error)

// Event describes a retry decision.
type Event struct {
	// Attempt is the 1-based number of the attempt that just failed.
	Attempt int

	// RemainingRetries is how many retries are left after the one being scheduled.
	RemainingRetries int

	// NextDelay is the wait before the next attempt. Zero on exhaustion.
	NextDelay time.Duration

	// Exhausted is true when no retries are left.
	Exhausted bool

	// Err is the failure that triggered the event.
	Err error
}

// Observer receives retry events.
type Observer func(ctx context.Context, event Event)

// Retrier applies a Policy to operations.
type Retrier struct {
	policy   Policy
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithClock sets the clock used for backoff waits.
func WithClock(c clock.Clock) Option {
	return func(r *Retrier) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger that records retry warnings and exhaustion.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a callback for every retry event.
func WithObserver(observer Observer) Option {
	return func(r *Retrier) {
		r.observer = observer
	}
}

// New creates a Retrier. Invalid policy values fall back to the defaults.
func New(policy Policy, opts ...Option) *Retrier {
	defaults := DefaultPolicy()
	if policy.MaxRetries < 0 {
		policy.MaxRetries = defaults.MaxRetries
	}
	if policy.InitialDelay < 0 {
		policy.InitialDelay = defaults.InitialDelay
	}
	if policy.GrowthFactor < 1 {
		policy.GrowthFactor = defaults.GrowthFactor
	}

	r := &Retrier{
		policy: policy,
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "retry")
	return r
}

// Policy returns the effective policy.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Execute runs op until it succeeds, fails with a Fatal classification, or the
// policy's retries are spent on RateLimited failures. Fatal failures are returned
// unchanged; exhaustion returns ErrRetriesExhausted wrapping the last failure.
// A nil classify means generation.DefaultClassifier.
func Execute[T any](ctx context.Context, r *Retrier, op Operation[T], classify generation.Classifier) (T, error) {
	var zero T
	if classify == nil {
		classify = generation.DefaultClassifier
	}

	// Retry state lives only for this invocation.
	remaining := r.policy.MaxRetries
	delay := r.policy.InitialDelay

	for attempt := 1; ; attempt++ {
		value, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				r.logger.InfoContext(ctx, "operation succeeded after retry", "attempt", attempt)
			}
			return value, nil
		}

		if classify(err) == generation.Fatal {
			r.logger.DebugContext(ctx, "fatal failure, not retrying",
				"attempt", attempt,
				"error", err)
			return zero, err
		}

		if remaining == 0 {
			r.logger.ErrorContext(ctx, "rate limit retries exhausted",
				"attempts", attempt,
				"max_retries", r.policy.MaxRetries,
				"error", err)
			r.notify(ctx, Event{Attempt: attempt, Exhausted: true, Err: err})
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}

		remaining--
		r.logger.WarnContext(ctx, "rate limited, retrying after delay",
			"attempt", attempt,
			"remaining_retries", remaining,
			"next_delay", delay.String(),
			"error", err)
		r.notify(ctx, Event{Attempt: attempt, RemainingRetries: remaining, NextDelay: delay, Err: err})

		if err := r.clock.Sleep(ctx, delay); err != nil {
			r.logger.WarnContext(ctx, "retry wait cancelled",
				"attempt", attempt,
				"ctx_err", err)
			return zero, err
		}
		delay = r.policy.next(delay)
	}
}

// ExecuteOrFallback behaves like Execute but returns fallback(lastErr) instead of
// an error when rate-limit retries are exhausted. Fatal failures and context
// cancellation still return an error.
func ExecuteOrFallback[T any](
	ctx context.Context,
	r *Retrier,
	op Operation[T],
	classify generation.Classifier,
	fallback func(err error) T,
) (T, error) {
	value, err := Execute(ctx, r, op, classify)
	if err != nil && errors.Is(err, ErrRetriesExhausted) && fallback != nil {
		return fallback(err), nil
	}
	return value, err
}

func (r *Retrier) notify(ctx context.Context, event Event) {
	if r.observer != nil {
		r.observer(ctx, event)
	}
}
