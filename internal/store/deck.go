package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckforge/internal/domain"
)

// DeckStore persists deck sections and items.
type DeckStore interface {
	// LoadDeck returns every stored section. Sections that were never saved are
	// present and empty.
	LoadDeck(ctx context.Context) (domain.Deck, error)

	// SaveSection replaces the stored contents of a section with the given items.
	SaveSection(ctx context.Context, section domain.Section) error

	// SaveItem overwrites one stored item.
	// Returns ErrItemNotFound if the item's section has not been saved with it.
	SaveItem(ctx context.Context, item domain.Item) error
}

// Restore loads the stored deck into a fresh DeckState. Items interrupted while
// their image was being produced come back as needs-image so a later run or
// regeneration picks them up.
func Restore(ctx context.Context, s DeckStore, now time.Time, logger *slog.Logger) (*domain.DeckState, error) {
	if logger == nil {
		logger = slog.Default()
	}

	deck, err := s.LoadDeck(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore deck: %w", err)
	}

	reset := 0
	for name, section := range deck.Sections {
		for i, item := range section.Items {
			if item.Status == domain.ItemStatusImageInProgress {
				section.Items[i] = item.WithStatus(domain.ItemStatusNeedsImage, now)
				reset++
			}
		}
		deck.Sections[name] = section
	}

	logger.InfoContext(ctx, "restored deck from store",
		"items", deck.ItemCount(),
		"interrupted_items", reset)

	return domain.NewDeckStateFrom(deck), nil
}
