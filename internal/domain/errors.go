package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input fails validation before any external call.
	// It is usually wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSection is returned when a section name is not one of the five deck sections.
	ErrInvalidSection = errors.New("invalid section name")

	// ErrEmptyTheme is returned when a generation request carries no theme.
	ErrEmptyTheme = errors.New("theme cannot be empty")

	// ErrItemNotFound is returned when no section of the deck holds the requested item.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemStatus is returned when an item status is not recognised.
	ErrInvalidItemStatus = errors.New("invalid item status")

	// ErrEmptyItemID is returned when an item has no identifier.
	ErrEmptyItemID = errors.New("item ID cannot be empty")

	// ErrSectionMismatch is returned when an item is written into a section it does not belong to.
	ErrSectionMismatch = errors.New("item does not belong to section")
)
