package orchestrator

import "errors"

// Errors returned by the orchestrator.
var (
	// ErrMetadataStage wraps every failure that aborts a section run.
	ErrMetadataStage = errors.New("metadata stage failed")

	// ErrCountMismatch is returned when the metadata stage produces the wrong number of entries.
	ErrCountMismatch = errors.New("metadata entry count does not match section size")

	// ErrNilDependency is returned when a required collaborator is missing.
	ErrNilDependency = errors.New("required dependency is nil")
)
