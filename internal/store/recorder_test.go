package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
	"github.com/phrazzld/deckforge/internal/mocks"
	"github.com/phrazzld/deckforge/internal/platform/logger"
	"github.com/phrazzld/deckforge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func cupsSection(n int) domain.Section {
	section := domain.Section{Name: domain.SectionCups}
	names := domain.SectionCups.ExpectedNames()
	for i := 0; i < n; i++ {
		item := domain.NewItem(domain.SectionCups, i, recordedAt)
		item.Name = names[i]
		section.Items = append(section.Items, item)
	}
	return section
}

func TestRecorder_PersistsPublishedSectionsAndItems(t *testing.T) {
	deckStore := mocks.NewMockDeckStore()
	recorder := store.NewRecorder(deckStore, nil)
	ctx := context.Background()

	section := cupsSection(3)
	published := events.New(events.TypeSectionPublished, domain.SectionCups, recordedAt)
	published.Items = section.Items
	require.NoError(t, recorder.HandleEvent(ctx, published))

	updated := section.Items[1].WithImage(&domain.ImageRef{Data: []byte{1}, MIMEType: "image/png"}, recordedAt)
	itemEvent := events.New(events.TypeItemUpdated, domain.SectionCups, recordedAt)
	itemEvent.Item = &updated
	require.NoError(t, recorder.HandleEvent(ctx, itemEvent))

	stored, ok := deckStore.StoredSection(domain.SectionCups)
	require.True(t, ok)
	require.Len(t, stored.Items, 3)
	assert.Equal(t, domain.ItemStatusImageReady, stored.Items[1].Status)
	assert.Equal(t, domain.ItemStatusNeedsImage, stored.Items[0].Status)
	assert.Len(t, deckStore.SavedSections, 1)
	assert.Len(t, deckStore.SavedItems, 1)
}

func TestRecorder_IgnoresOtherEvents(t *testing.T) {
	deckStore := &mocks.MockDeckStore{
		SaveSectionFn: func(context.Context, domain.Section) error {
			t.Fatal("unexpected section write")
			return nil
		},
		SaveItemFn: func(context.Context, domain.Item) error {
			t.Fatal("unexpected item write")
			return nil
		},
	}
	recorder := store.NewRecorder(deckStore, nil)

	for _, eventType := range []events.Type{
		events.TypeStageChanged,
		events.TypeProgress,
		events.TypeRetryScheduled,
		events.TypeRetryExhausted,
		events.TypeRunFinished,
	} {
		assert.NoError(t, recorder.HandleEvent(context.Background(), events.New(eventType, domain.SectionWands, recordedAt)))
	}
	assert.NoError(t, recorder.HandleEvent(context.Background(), events.New(events.TypeItemUpdated, domain.SectionWands, recordedAt)))
	assert.NoError(t, recorder.HandleEvent(context.Background(), nil))
}

func TestRecorder_ReportsStoreFailures(t *testing.T) {
	logBuf, log, cleanup := logger.SetupTestLogger(t, nil)
	defer cleanup()

	writeErr := errors.New("disk full")
	deckStore := &mocks.MockDeckStore{
		SaveSectionFn: func(context.Context, domain.Section) error { return writeErr },
	}
	recorder := store.NewRecorder(deckStore, log)

	event := events.New(events.TypeSectionPublished, domain.SectionCups, recordedAt)
	event.Items = cupsSection(2).Items
	err := recorder.HandleEvent(context.Background(), event)

	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	logger.AssertLogContains(t, logBuf, "failed to persist section")
}

func TestRecorder_UnknownItem(t *testing.T) {
	recorder := store.NewRecorder(mocks.NewMockDeckStore(), nil)

	item := cupsSection(1).Items[0]
	event := events.New(events.TypeItemUpdated, domain.SectionCups, recordedAt)
	event.Item = &item

	err := recorder.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}
