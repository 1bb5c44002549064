package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
)

// Recorder is an events.Handler that writes published sections and updated
// items to a DeckStore. Other event types are ignored.
type Recorder struct {
	store  DeckStore
	logger *slog.Logger
}

var _ events.Handler = (*Recorder)(nil)

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(store DeckStore, logger *slog.Logger) *Recorder {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With("component", "deck_recorder"),
	}
}

// HandleEvent implements events.Handler.
func (r *Recorder) HandleEvent(ctx context.Context, event *events.Event) error {
	if event == nil {
		return nil
	}

	switch event.Type {
	case events.TypeSectionPublished:
		section := domain.Section{Name: event.Section, Items: event.Items}
		if err := r.store.SaveSection(ctx, section); err != nil {
			r.logger.ErrorContext(ctx, "failed to persist section",
				"section", event.Section,
				"items", len(section.Items),
				"error", err)
			return fmt.Errorf("failed to persist section %s: %w", event.Section, err)
		}
		r.logger.DebugContext(ctx, "persisted section",
			"section", event.Section,
			"items", len(section.Items))

	case events.TypeItemUpdated:
		if event.Item == nil {
			return nil
		}
		if err := r.store.SaveItem(ctx, *event.Item); err != nil {
			r.logger.ErrorContext(ctx, "failed to persist item",
				"item_id", event.Item.ID,
				"status", event.Item.Status,
				"error", err)
			return fmt.Errorf("failed to persist item %s: %w", event.Item.ID, err)
		}
	}

	return nil
}
