package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/progress"
)

// Type identifies the kind of progress event.
type Type string

// Event types.
const (
	TypeStageChanged     Type = "stage_changed"
	TypeSectionPublished Type = "section_published"
	TypeItemUpdated      Type = "item_updated"
	TypeProgress         Type = "progress"
	TypeRetryScheduled   Type = "retry_scheduled"
	TypeRetryExhausted   Type = "retry_exhausted"
	TypeRunFinished      Type = "run_finished"
)

// Event is one progress notification.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what changed
	Type Type `json:"type"`

	// Section is the section the event concerns
	Section domain.SectionName `json:"section"`

	// Progress is the run status at the time of the event. Zero for regeneration events.
	Progress progress.Snapshot `json:"progress"`

	// Item is a copy of the affected item for item events
	Item *domain.Item `json:"item,omitempty"`

	// Items is a copy of the published section for section events
	Items []domain.Item `json:"items,omitempty"`

	// DeckVersion is the deck version after the change, when the event follows a write
	DeckVersion uint64 `json:"deck_version,omitempty"`

	// RemainingRetries and NextDelay describe a scheduled retry
	RemainingRetries int           `json:"remaining_retries,omitempty"`
	NextDelay        time.Duration `json:"next_delay,omitempty"`

	// Error describes the failure for failed runs and exhausted retries
	Error string `json:"error,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// New creates an Event with a fresh ID.
func New(eventType Type, section domain.SectionName, at time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Section:   section,
		CreatedAt: at,
	}
}

// Handler defines an interface for components that observe events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter defines an interface for components that publish events.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
