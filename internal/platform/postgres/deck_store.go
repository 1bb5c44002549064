package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/store"
)

const (
	itemColumns = `id, section, ordinal, name, description, upright_meaning, reversed_meaning,
		visual_instruction, image_data, image_mime_type, status, created_at, updated_at`

	selectItemsQuery = `SELECT ` + itemColumns + ` FROM items ORDER BY section, ordinal`

	upsertSectionQuery = `
		INSERT INTO sections (name, updated_at)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at`

	deleteSectionItemsQuery = `DELETE FROM items WHERE section = $1`

	insertItemQuery = `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	updateItemQuery = `
		UPDATE items
		SET name = $3, description = $4, upright_meaning = $5, reversed_meaning = $6,
			visual_instruction = $7, image_data = $8, image_mime_type = $9, status = $10,
			updated_at = $11
		WHERE id = $1 AND section = $2`
)

// DeckStore implements store.DeckStore on PostgreSQL.
type DeckStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates a DeckStore on an open connection pool.
// If logger is nil, a default logger will be used.
func NewDeckStore(db *sql.DB, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckStore{
		db:     db,
		logger: logger.With("component", "deck_store"),
	}
}

// LoadDeck implements store.DeckStore.LoadDeck.
func (s *DeckStore) LoadDeck(ctx context.Context) (domain.Deck, error) {
	deck := domain.NewDeck()

	rows, err := s.db.QueryContext(ctx, selectItemsQuery)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to query items", "error", err)
		return domain.Deck{}, store.NewStoreError("deck", "load", "failed to query items", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to scan item row", "error", err)
			return domain.Deck{}, store.NewStoreError("deck", "load", "failed to scan item", err)
		}
		section, ok := deck.Sections[item.Section]
		if !ok {
			s.logger.WarnContext(ctx, "skipping item in unknown section",
				"item_id", item.ID,
				"section", item.Section)
			continue
		}
		section.Items = append(section.Items, item)
		deck.Sections[item.Section] = section
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "error iterating item rows", "error", err)
		return domain.Deck{}, store.NewStoreError("deck", "load", "failed to read items", MapError(err))
	}

	return deck, nil
}

// SaveSection implements store.DeckStore.SaveSection. The section row is
// upserted and its items replaced in one transaction.
func (s *DeckStore) SaveSection(ctx context.Context, section domain.Section) error {
	if !section.Name.Valid() {
		return fmt.Errorf("%w: %w: %q", store.ErrInvalidEntity, domain.ErrInvalidSection, section.Name)
	}
	for _, item := range section.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		if item.Section != section.Name {
			return fmt.Errorf("%w: %w: %s", store.ErrInvalidEntity, domain.ErrSectionMismatch, item.ID)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertSectionQuery, section.Name, time.Now().UTC()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteSectionItemsQuery, section.Name); err != nil {
			return err
		}
		for _, item := range section.Items {
			if err := insertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save section",
			"section", section.Name,
			"items", len(section.Items),
			"error", err)
		return store.NewStoreError("section", "save", string(section.Name), MapError(err))
	}

	s.logger.DebugContext(ctx, "saved section",
		"section", section.Name,
		"items", len(section.Items))
	return nil
}

// SaveItem implements store.DeckStore.SaveItem.
// Returns store.ErrItemNotFound if the item row does not exist.
func (s *DeckStore) SaveItem(ctx context.Context, item domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	data, mimeType := imageColumns(item.Image)
	result, err := s.db.ExecContext(ctx, updateItemQuery,
		item.ID,
		item.Section,
		item.Name,
		item.Description,
		item.UprightMeaning,
		item.ReversedMeaning,
		item.VisualInstruction,
		data,
		mimeType,
		item.Status,
		item.UpdatedAt.UTC(),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update item",
			"item_id", item.ID,
			"error", err)
		return store.NewStoreError("item", "save", item.ID, MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrItemNotFound); err != nil {
		return fmt.Errorf("%w: %s", err, item.ID)
	}
	return nil
}

func insertItem(ctx context.Context, db store.DBTX, item domain.Item) error {
	data, mimeType := imageColumns(item.Image)
	_, err := db.ExecContext(ctx, insertItemQuery,
		item.ID,
		item.Section,
		item.Ordinal,
		item.Name,
		item.Description,
		item.UprightMeaning,
		item.ReversedMeaning,
		item.VisualInstruction,
		data,
		mimeType,
		item.Status,
		item.CreatedAt.UTC(),
		item.UpdatedAt.UTC(),
	)
	return err
}

// imageColumns maps an image reference to its two nullable columns.
func imageColumns(ref *domain.ImageRef) (interface{}, interface{}) {
	if ref == nil {
		return nil, nil
	}
	return ref.Data, ref.MIMEType
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		item      domain.Item
		imageData []byte
		mimeType  sql.NullString
	)
	err := row.Scan(
		&item.ID,
		&item.Section,
		&item.Ordinal,
		&item.Name,
		&item.Description,
		&item.UprightMeaning,
		&item.ReversedMeaning,
		&item.VisualInstruction,
		&imageData,
		&mimeType,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, err
	}
	if mimeType.Valid {
		item.Image = &domain.ImageRef{Data: imageData, MIMEType: mimeType.String}
	}
	return item, nil
}
