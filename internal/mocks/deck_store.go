package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/store"
)

// MockDeckStore implements store.DeckStore for testing. Without function
// overrides it behaves as an in-memory store.
type MockDeckStore struct {
	// LoadDeckFn allows test cases to mock the LoadDeck behavior
	LoadDeckFn func(ctx context.Context) (domain.Deck, error)

	// SaveSectionFn allows test cases to mock the SaveSection behavior
	SaveSectionFn func(ctx context.Context, section domain.Section) error

	// SaveItemFn allows test cases to mock the SaveItem behavior
	SaveItemFn func(ctx context.Context, item domain.Item) error

	mu       sync.Mutex
	sections map[domain.SectionName]domain.Section

	// SavedSections and SavedItems record every successful write, in call order
	SavedSections []domain.Section
	SavedItems    []domain.Item
}

var _ store.DeckStore = (*MockDeckStore)(nil)

// NewMockDeckStore creates an in-memory MockDeckStore seeded with the given sections.
func NewMockDeckStore(seed ...domain.Section) *MockDeckStore {
	m := &MockDeckStore{sections: make(map[domain.SectionName]domain.Section)}
	for _, section := range seed {
		m.sections[section.Name] = section.Clone()
	}
	return m
}

// LoadDeck implements store.DeckStore.
func (m *MockDeckStore) LoadDeck(ctx context.Context) (domain.Deck, error) {
	if m.LoadDeckFn != nil {
		return m.LoadDeckFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	deck := domain.NewDeck()
	for name, section := range m.sections {
		deck.Sections[name] = section.Clone()
	}
	return deck, nil
}

// SaveSection implements store.DeckStore.
func (m *MockDeckStore) SaveSection(ctx context.Context, section domain.Section) error {
	if m.SaveSectionFn != nil {
		if err := m.SaveSectionFn(ctx, section); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sections == nil {
		m.sections = make(map[domain.SectionName]domain.Section)
	}
	m.sections[section.Name] = section.Clone()
	m.SavedSections = append(m.SavedSections, section.Clone())
	return nil
}

// SaveItem implements store.DeckStore.
func (m *MockDeckStore) SaveItem(ctx context.Context, item domain.Item) error {
	if m.SaveItemFn != nil {
		if err := m.SaveItemFn(ctx, item); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	section, ok := m.sections[item.Section]
	idx := section.IndexOf(item.ID)
	if !ok || idx < 0 {
		return store.ErrItemNotFound
	}
	section.Items[idx] = item.Clone()
	m.SavedItems = append(m.SavedItems, item.Clone())
	return nil
}

// StoredSection returns a copy of the stored section.
func (m *MockDeckStore) StoredSection(name domain.SectionName) (domain.Section, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	section, ok := m.sections[name]
	return section.Clone(), ok
}
