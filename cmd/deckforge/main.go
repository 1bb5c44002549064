// Package main implements the deckforge command. It serves the deck
// generation API, runs one section from the command line, and applies
// database migrations.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
