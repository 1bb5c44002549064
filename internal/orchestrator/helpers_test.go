package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
	"github.com/phrazzld/deckforge/internal/mocks"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// collector records every event it receives.
type collector struct {
	mu     sync.Mutex
	events []*events.Event
}

func (c *collector) HandleEvent(_ context.Context, event *events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *collector) ofType(eventType events.Type) []*events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*events.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctrl      *Controller
	deck      *domain.DeckState
	generator *mocks.MockGenerator
	clock     *clock.Fake
	events    *collector
}

func newFixture(t *testing.T, generator *mocks.MockGenerator) *fixture {
	t.Helper()
	if generator == nil {
		generator = &mocks.MockGenerator{}
	}

	fake := clock.NewFake(testStart)
	deck := domain.NewDeckState()
	emitter := events.NewInMemoryEmitter(nil)
	sink := &collector{}
	emitter.RegisterHandler(sink)

	ctrl, err := NewController(deck, generator, DefaultConfig(),
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
		WithClock(fake),
		WithEmitter(emitter))
	require.NoError(t, err)

	return &fixture{
		ctrl:      ctrl,
		deck:      deck,
		generator: generator,
		clock:     fake,
		events:    sink,
	}
}

func repeat(d time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}
