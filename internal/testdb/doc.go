// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it are skipped unless DATABASE_URL (or
// DECKFORGE_TEST_DB_URL) points at a reachable server.
//
// Basic usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    store := postgres.NewDeckStore(db, nil)
//	    // ...
//	}
//
// Open applies the embedded migrations and empties the deck tables both
// before the test and at cleanup, so tests start from an empty deck.
package testdb
