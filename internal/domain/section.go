package domain

import (
	"fmt"
	"strings"
)

// SectionName identifies one of the five sections of the deck.
type SectionName string

// The five deck sections.
const (
	SectionMajor     SectionName = "major"
	SectionWands     SectionName = "wands"
	SectionCups      SectionName = "cups"
	SectionSwords    SectionName = "swords"
	SectionPentacles SectionName = "pentacles"
)

// Expected cardinalities.
const (
	MajorArcanaSize = 22
	MinorSuitSize   = 14
	DeckSize        = MajorArcanaSize + 4*MinorSuitSize
)

// SectionNames lists every section in canonical deck order.
var SectionNames = []SectionName{
	SectionMajor,
	SectionWands,
	SectionCups,
	SectionSwords,
	SectionPentacles,
}

var sectionLabels = map[SectionName]string{
	SectionMajor:     "Major Arcana",
	SectionWands:     "Wands",
	SectionCups:      "Cups",
	SectionSwords:    "Swords",
	SectionPentacles: "Pentacles",
}

var majorArcanaNames = []string{
	"The Fool",
	"The Magician",
	"The High Priestess",
	"The Empress",
	"The Emperor",
	"The Hierophant",
	"The Lovers",
	"The Chariot",
	"Strength",
	"The Hermit",
	"Wheel of Fortune",
	"Justice",
	"The Hanged Man",
	"Death",
	"Temperance",
	"The Devil",
	"The Tower",
	"The Star",
	"The Moon",
	"The Sun",
	"Judgement",
	"The World",
}

var rankNames = []string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Page", "Knight", "Queen", "King",
}

// ParseSectionName converts a raw name into a SectionName. Matching is
// case-insensitive and also accepts the display label ("Major Arcana").
func ParseSectionName(raw string) (SectionName, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, name := range SectionNames {
		if normalized == string(name) || normalized == strings.ToLower(sectionLabels[name]) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidSection, raw)
}

// Valid reports whether s is one of the five deck sections.
func (s SectionName) Valid() bool {
	_, ok := sectionLabels[s]
	return ok
}

// Label returns the display label of the section.
func (s SectionName) Label() string {
	return sectionLabels[s]
}

// ExpectedSize returns the fixed cardinality of the section, or 0 for an invalid name.
func (s SectionName) ExpectedSize() int {
	switch {
	case s == SectionMajor:
		return MajorArcanaSize
	case s.Valid():
		return MinorSuitSize
	default:
		return 0
	}
}

// ExpectedNames returns the canonical, ordered card names of the section.
// The Major Arcana has 22 fixed names; every suit combines the 14 ranks with its label.
func (s SectionName) ExpectedNames() []string {
	if s == SectionMajor {
		out := make([]string, len(majorArcanaNames))
		copy(out, majorArcanaNames)
		return out
	}
	if !s.Valid() {
		return nil
	}

	out := make([]string, 0, len(rankNames))
	for _, rank := range rankNames {
		out = append(out, rank+" of "+s.Label())
	}
	return out
}

// SectionState describes how far generation has progressed for a section.
type SectionState string

// Section states.
const (
	SectionEmpty    SectionState = "empty"
	SectionPartial  SectionState = "partial"
	SectionComplete SectionState = "complete"
)

// Section is a named, ordered collection of items.
type Section struct {
	Name  SectionName `json:"name"`
	Items []Item      `json:"items"`
}

// State derives the section state from its items: empty without items, complete
// when every item is image-ready or image-failed, partial otherwise.
func (s Section) State() SectionState {
	if len(s.Items) == 0 {
		return SectionEmpty
	}
	for _, item := range s.Items {
		if !item.Status.Terminal() {
			return SectionPartial
		}
	}
	return SectionComplete
}

// Counts returns the number of ready and failed items.
func (s Section) Counts() (ready, failed int) {
	for _, item := range s.Items {
		switch item.Status {
		case ItemStatusImageReady:
			ready++
		case ItemStatusImageFailed:
			failed++
		}
	}
	return ready, failed
}

// IndexOf returns the position of the item with the given ID, or -1.
func (s Section) IndexOf(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := Section{Name: s.Name}
	if s.Items != nil {
		out.Items = make([]Item, len(s.Items))
		for i, item := range s.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}
