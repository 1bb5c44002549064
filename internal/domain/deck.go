package domain

import (
	"fmt"
	"sync"
)

// Deck maps every section name to its section. All five keys are always present.
type Deck struct {
	Version  uint64                  `json:"version"`
	Sections map[SectionName]Section `json:"sections"`
}

// NewDeck creates a deck with five empty sections.
func NewDeck() Deck {
	sections := make(map[SectionName]Section, len(SectionNames))
	for _, name := range SectionNames {
		sections[name] = Section{Name: name}
	}
	return Deck{Sections: sections}
}

// Clone returns a deep copy of the deck.
func (d Deck) Clone() Deck {
	out := Deck{
		Version:  d.Version,
		Sections: make(map[SectionName]Section, len(d.Sections)),
	}
	for name, section := range d.Sections {
		out.Sections[name] = section.Clone()
	}
	return out
}

// ItemCount returns the number of items across all sections.
func (d Deck) ItemCount() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Items)
	}
	return total
}

// FindItem scans all five sections in canonical order for the item. There is no
// reverse index; identifiers are unique deck-wide so the first match is the only one.
func (d Deck) FindItem(id string) (SectionName, int, bool) {
	for _, name := range SectionNames {
		section, ok := d.Sections[name]
		if !ok {
			continue
		}
		if idx := section.IndexOf(id); idx >= 0 {
			return name, idx, true
		}
	}
	return "", -1, false
}

// DeckState owns the deck while generation runs. Every write replaces a whole
// section or a whole item under the lock and bumps the version; readers only
// ever receive deep copies.
type DeckState struct {
	mu   sync.RWMutex
	deck Deck
}

// NewDeckState creates a state holding an empty deck.
func NewDeckState() *DeckState {
	return &DeckState{deck: NewDeck()}
}

// NewDeckStateFrom seeds a state with an existing deck, filling in any missing sections.
func NewDeckStateFrom(deck Deck) *DeckState {
	seeded := deck.Clone()
	if seeded.Sections == nil {
		seeded.Sections = make(map[SectionName]Section, len(SectionNames))
	}
	for _, name := range SectionNames {
		if _, ok := seeded.Sections[name]; !ok {
			seeded.Sections[name] = Section{Name: name}
		}
	}
	return &DeckState{deck: seeded}
}

// Snapshot returns a deep copy of the current deck.
func (s *DeckState) Snapshot() Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck.Clone()
}

// Version returns the current version.
func (s *DeckState) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck.Version
}

// Section returns a deep copy of one section.
func (s *DeckState) Section(name SectionName) (Section, error) {
	if !name.Valid() {
		return Section{}, fmt.Errorf("%w: %q", ErrInvalidSection, name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck.Sections[name].Clone(), nil
}

// FindItem locates an item by identifier and returns a copy of it.
func (s *DeckState) FindItem(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, idx, ok := s.deck.FindItem(id)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return s.deck.Sections[name].Items[idx].Clone(), nil
}

// ReplaceSection atomically swaps in a new section and returns the new version.
func (s *DeckState) ReplaceSection(section Section) (uint64, error) {
	if !section.Name.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSection, section.Name)
	}
	for _, item := range section.Items {
		if item.Section != section.Name {
			return 0, fmt.Errorf("%w: %s in %s", ErrSectionMismatch, item.ID, section.Name)
		}
	}

	replacement := section.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck.Sections[section.Name] = replacement
	s.deck.Version++
	return s.deck.Version, nil
}

// ReplaceItem atomically swaps in a new version of an existing item and returns
// the new deck version. The item keeps its position within its section.
func (s *DeckState) ReplaceItem(item Item) (uint64, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}

	replacement := item.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	section := s.deck.Sections[item.Section]
	idx := section.IndexOf(item.ID)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}

	items := make([]Item, len(section.Items))
	copy(items, section.Items)
	items[idx] = replacement
	s.deck.Sections[item.Section] = Section{Name: section.Name, Items: items}
	s.deck.Version++
	return s.deck.Version, nil
}
