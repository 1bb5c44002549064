package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/deckforge/internal/generation"
	"google.golang.org/genai"
)

const providerName = "gemini"

// translateError converts SDK errors into the generation error taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generation.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &generation.ProviderError{
			Provider:   providerName,
			StatusCode: apiErrPtr.Code,
			Status:     apiErrPtr.Status,
			Message:    apiErrPtr.Message,
			Err:        err,
		}
	}

	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}
