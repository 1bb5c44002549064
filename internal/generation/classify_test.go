package generation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultClassifier_KnownFailureShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Classification
	}{
		{name: "nil", err: nil, want: Fatal},
		{name: "rate limit sentinel", err: ErrRateLimited, want: RateLimited},
		{name: "wrapped sentinel", err: fmt.Errorf("image call: %w", ErrRateLimited), want: RateLimited},
		{
			name: "provider 429",
			err:  &ProviderError{Provider: "gemini", StatusCode: 429, Message: "slow down"},
			want: RateLimited,
		},
		{
			name: "provider resource exhausted status",
			err:  &ProviderError{Provider: "gemini", StatusCode: 400, Status: "RESOURCE_EXHAUSTED", Message: "x"},
			want: RateLimited,
		},
		{
			name: "provider 500",
			err:  &ProviderError{Provider: "openai", StatusCode: 500, Status: "INTERNAL", Message: "boom"},
			want: Fatal,
		},
		{name: "quota in message", err: errors.New("Quota exceeded for images per minute"), want: RateLimited},
		{name: "429 in message", err: errors.New("googleapi: Error 429"), want: RateLimited},
		{name: "too many requests", err: errors.New("Too Many Requests"), want: RateLimited},
		{name: "invalid response", err: fmt.Errorf("%w: no candidates", ErrInvalidResponse), want: Fatal},
		{
			name: "invalid response mentioning quota stays fatal",
			err:  fmt.Errorf("%w: quota field missing", ErrInvalidResponse),
			want: Fatal,
		},
		{name: "blocked", err: ErrContentBlocked, want: Fatal},
		{name: "other", err: errors.New("connection reset"), want: Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.err))
		})
	}
}

func TestNewClassifier_CustomPatterns(t *testing.T) {
	t.Parallel()

	classify := NewClassifier([]string{"  Overloaded "})

	assert.Equal(t, RateLimited, classify(errors.New("model overloaded, try later")))
	assert.Equal(t, Fatal, classify(errors.New("quota exceeded")), "custom list replaces the defaults")
	assert.Equal(t, RateLimited, classify(&ProviderError{Provider: "x", StatusCode: 429}))
}

func TestClassification_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "rate_limited", RateLimited.String())
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	inner := errors.New("sdk")
	err := &ProviderError{Provider: "gemini", StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota", Err: inner}
	assert.Equal(t, "gemini: 429 RESOURCE_EXHAUSTED: quota", err.Error())
	assert.ErrorIs(t, err, inner)

	assert.Equal(t, "openai: 500: boom", (&ProviderError{Provider: "openai", StatusCode: 500, Message: "boom"}).Error())
	assert.Equal(t, "x: m", (&ProviderError{Provider: "x", Message: "m"}).Error())
}
