package pacing

import (
	"context"
	"iter"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
)

// Sequence yields elements of a slice one pacing interval apart.
type Sequence[T any] struct {
	clock    clock.Clock
	interval time.Duration
	items    []T
	err      error
}

// New creates a paced sequence over items. A nil clock means the wall clock.
func New[T any](c clock.Clock, interval time.Duration, items []T) *Sequence[T] {
	if c == nil {
		c = clock.Real{}
	}
	return &Sequence[T]{
		clock:    c,
		interval: interval,
		items:    items,
	}
}

// All returns an iterator over the index and element of each item. Element 0 is
// yielded immediately; before every later element the sequence sleeps for the
// pacing interval. Iteration stops early if ctx is done, and Err reports why.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s.err = nil
		for i, item := range s.items {
			if i > 0 {
				if err := s.clock.Sleep(ctx, s.interval); err != nil {
					s.err = err
					return
				}
			} else if err := ctx.Err(); err != nil {
				s.err = err
				return
			}
			if !yield(i, item) {
				return
			}
		}
	}
}

// Err returns the context error that stopped the last iteration, if any.
func (s *Sequence[T]) Err() error {
	return s.err
}

// Len returns the number of elements in the sequence.
func (s *Sequence[T]) Len() int {
	return len(s.items)
}
