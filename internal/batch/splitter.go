package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/pacing"
)

// DefaultMaxSize is the largest sub-request that reliably returns every entry.
const DefaultMaxSize = 15

// ErrInvalidMaxSize is returned when the maximum sub-request size is not positive.
var ErrInvalidMaxSize = errors.New("batch max size must be positive")

// Request is one ordered sub-request.
type Request struct {
	// Index is the 0-based position of the sub-request.
	Index int

	// Count is the total number of sub-requests in the split.
	Count int

	// Names are the canonical entries this sub-request must produce.
	Names []string
}

// Split divides names into ceil(N/maxSize) contiguous sub-requests whose sizes
// differ by at most one and sum to N. Canonical order is preserved.
func Split(names []string, maxSize int) ([]Request, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxSize, maxSize)
	}
	if len(names) == 0 {
		return nil, nil
	}

	count := (len(names) + maxSize - 1) / maxSize
	base, extra := len(names)/count, len(names)%count

	requests := make([]Request, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		part := make([]string, size)
		copy(part, names[start:start+size])
		requests = append(requests, Request{Index: i, Count: count, Names: part})
		start += size
	}
	return requests, nil
}

// Runner issues sub-requests one at a time, pacing them apart.
type Runner struct {
	clock    clock.Clock
	interval time.Duration
}

// NewRunner creates a Runner that waits interval between sub-requests.
func NewRunner(c clock.Clock, interval time.Duration) *Runner {
	return &Runner{clock: c, interval: interval}
}

// Run issues every request in order and concatenates the results in request
// order. If any request fails, Run fails and no partial results are returned.
// Results are neither deduplicated nor re-sorted.
func Run[T any](ctx context.Context, r *Runner, requests []Request, fn func(context.Context, Request) ([]T, error)) ([]T, error) {
	seq := pacing.New(r.clock, r.interval, requests)

	var out []T
	for _, req := range seq.All(ctx) {
		results, err := fn(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("sub-request %d of %d: %w", req.Index+1, req.Count, err)
		}
		out = append(out, results...)
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
