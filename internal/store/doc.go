// Package store defines the persistence contract for the deck.
//
// DeckStore abstracts where sections and items live between runs. The
// orchestrator never talks to it directly: a Recorder subscribes to the
// progress event stream and writes every published section and updated item,
// and Restore seeds the in-memory deck state from the store at startup.
package store
