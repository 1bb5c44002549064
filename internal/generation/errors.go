package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidResponse is returned when the service response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrContentBlocked is returned when the service rejects the request on policy grounds
	ErrContentBlocked = errors.New("content blocked by generation service policy")

	// ErrRateLimited is returned when the service signals that the request quota was exceeded
	ErrRateLimited = errors.New("generation service rate limit exceeded")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyInstruction is returned when an image request carries no instruction
	ErrEmptyInstruction = errors.New("image instruction cannot be empty")
)

// ProviderError carries the structured failure details reported by a provider SDK.
// Adapters translate their SDK errors into ProviderError so classification works
// on status codes instead of provider-specific types.
type ProviderError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Status != "":
		return fmt.Sprintf("%s: %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %d: %s", e.Provider, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

// Unwrap returns the underlying SDK error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
