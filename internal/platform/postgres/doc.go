// Package postgres provides the PostgreSQL implementation of store.DeckStore,
// the database connection helper, and the embedded goose migrations that
// create the deck schema.
//
// Connections go through database/sql with the pgx stdlib driver registered
// under the name "pgx".
package postgres
