package generation

import (
	"errors"
	"net/http"
	"strings"
)

// Classification is the retry category of a failure.
type Classification int

const (
	// Fatal failures are not retried: malformed responses, policy rejections and
	// every non-quota error.
	Fatal Classification = iota

	// RateLimited failures are transient quota signals that resolve by waiting.
	RateLimited
)

// String returns the name of the classification.
func (c Classification) String() string {
	switch c {
	case RateLimited:
		return "rate_limited"
	default:
		return "fatal"
	}
}

// Classifier maps a raw failure to a Classification.
type Classifier func(err error) Classification

// DefaultRateLimitPatterns are message fragments providers use to signal quota exhaustion.
var DefaultRateLimitPatterns = []string{
	"429",
	"quota",
	"rate limit",
	"rate_limit",
	"resource exhausted",
	"resource_exhausted",
	"too many requests",
}

// rateLimitStatuses are structured status names meaning "quota exceeded".
var rateLimitStatuses = map[string]bool{
	"RESOURCE_EXHAUSTED":  true,
	"RATE_LIMIT_EXCEEDED": true,
}

// NewClassifier builds a classifier that recognises, in order:
//   - the ErrRateLimited sentinel anywhere in the chain (RateLimited)
//   - ErrInvalidResponse and ErrContentBlocked (Fatal, even if the message mentions quotas)
//   - a ProviderError with HTTP 429 or a quota status (RateLimited)
//   - any of patterns in the lower-cased error message (RateLimited)
//
// Everything else is Fatal. A nil patterns slice means DefaultRateLimitPatterns.
func NewClassifier(patterns []string) Classifier {
	if patterns == nil {
		patterns = DefaultRateLimitPatterns
	}
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}

	return func(err error) Classification {
		if err == nil {
			return Fatal
		}
		if errors.Is(err, ErrRateLimited) {
			return RateLimited
		}
		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrContentBlocked) {
			return Fatal
		}

		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			if providerErr.StatusCode == http.StatusTooManyRequests ||
				rateLimitStatuses[strings.ToUpper(providerErr.Status)] {
				return RateLimited
			}
		}

		msg := strings.ToLower(err.Error())
		for _, p := range lowered {
			if strings.Contains(msg, p) {
				return RateLimited
			}
		}
		return Fatal
	}
}

// DefaultClassifier classifies with DefaultRateLimitPatterns.
var DefaultClassifier = NewClassifier(nil)
