package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/deckforge/internal/api/shared"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
	"github.com/phrazzld/deckforge/internal/orchestrator"
	"github.com/phrazzld/deckforge/internal/retry"
	"github.com/phrazzld/deckforge/internal/store"
)

var (
	// ErrRunActive is returned when a section already has a run or regeneration in flight.
	ErrRunActive = errors.New("generation already running for section")

	// ErrNoRun is returned when progress is requested for a section that never ran.
	ErrNoRun = errors.New("no generation run recorded for section")

	// ErrImageUnavailable is returned when an item has no produced image.
	ErrImageUnavailable = errors.New("item has no image")
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidSection),
		errors.Is(err, domain.ErrEmptyTheme),
		errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, ErrNoRun),
		errors.Is(err, ErrImageUnavailable):
		return http.StatusNotFound

	case errors.Is(err, ErrRunActive):
		return http.StatusConflict

	case errors.Is(err, orchestrator.ErrMetadataStage),
		errors.Is(err, retry.ErrRetriesExhausted),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrRateLimited):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that leaks no
// internal detail.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, domain.ErrInvalidSection):
		return "Unknown section"
	case errors.Is(err, domain.ErrEmptyTheme):
		return "Theme is required"
	case errors.Is(err, domain.ErrEmptyItemID):
		return "Item ID is required"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, store.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, ErrNoRun):
		return "No generation run recorded for this section"
	case errors.Is(err, ErrImageUnavailable):
		return "Image not available"
	case errors.Is(err, ErrRunActive):
		return "Generation already running for this section"
	case errors.Is(err, retry.ErrRetriesExhausted), errors.Is(err, generation.ErrRateLimited):
		return "Generation service quota exhausted"
	case errors.Is(err, generation.ErrContentBlocked):
		return "Request rejected by generation service policy"
	case errors.Is(err, orchestrator.ErrMetadataStage),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Generation service failed"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err, logging
// the redacted details. A non-empty message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}

// SanitizeValidationError turns validator output into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	field := validationErrs[0]
	name := strings.ToLower(field.Field())
	switch field.Tag() {
	case "required":
		return fmt.Sprintf("Invalid %s: required field", name)
	case "max":
		return fmt.Sprintf("Invalid %s: too long", name)
	case "oneof":
		return fmt.Sprintf("Invalid %s: invalid value", name)
	default:
		return fmt.Sprintf("Invalid %s: validation failed", name)
	}
}
