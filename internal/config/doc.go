// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Values are resolved in increasing precedence: built-in defaults, an optional
// config.yaml, then DECKFORGE_* environment variables (for example
// DECKFORGE_GENERATION_IMAGE_PACING=2s).
package config
