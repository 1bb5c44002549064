// Package domain defines the deck entities and their invariants: the five
// sections of a 78-card deck, the items generated for each section, and the
// versioned DeckState that owns them while generation runs.
//
// Entities here carry no knowledge of the generation service. Items are created
// in bulk when a section's metadata succeeds and are only ever replaced, never
// deleted; DeckState hands out deep copies so an observer never sees an item in a
// half-updated state.
package domain
