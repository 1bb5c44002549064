package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// SynthesizeMetadataFn allows test cases to mock the SynthesizeMetadata behavior
	SynthesizeMetadataFn func(ctx context.Context, req generation.MetadataRequest) ([]generation.CardMetadata, error)

	// SynthesizeImageFn allows test cases to mock the SynthesizeImage behavior
	SynthesizeImageFn func(ctx context.Context, req generation.ImageRequest) (*domain.ImageRef, error)

	// mu protects the call tracking state
	mu sync.Mutex

	// MetadataCalls contains every metadata request, in call order
	MetadataCalls []generation.MetadataRequest

	// ImageCalls contains every image request, in call order
	ImageCalls []generation.ImageRequest
}

var _ generation.Generator = (*MockGenerator)(nil)

// SynthesizeMetadata implements the generation.Generator interface.
// Without SynthesizeMetadataFn it echoes one entry per requested name.
func (m *MockGenerator) SynthesizeMetadata(
	ctx context.Context,
	req generation.MetadataRequest,
) ([]generation.CardMetadata, error) {
	m.mu.Lock()
	m.MetadataCalls = append(m.MetadataCalls, req)
	m.mu.Unlock()

	if m.SynthesizeMetadataFn != nil {
		return m.SynthesizeMetadataFn(ctx, req)
	}
	return EchoMetadata(req), nil
}

// SynthesizeImage implements the generation.Generator interface.
// Without SynthesizeImageFn it returns a small PNG-typed payload.
func (m *MockGenerator) SynthesizeImage(
	ctx context.Context,
	req generation.ImageRequest,
) (*domain.ImageRef, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	m.mu.Unlock()

	if m.SynthesizeImageFn != nil {
		return m.SynthesizeImageFn(ctx, req)
	}
	return &domain.ImageRef{Data: []byte(req.Instruction), MIMEType: "image/png"}, nil
}

// MetadataCallCount returns the number of SynthesizeMetadata calls.
func (m *MockGenerator) MetadataCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.MetadataCalls)
}

// ImageCallCount returns the number of SynthesizeImage calls.
func (m *MockGenerator) ImageCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ImageCalls)
}

// ImageInstructions returns the instruction of every image call, in call order.
func (m *MockGenerator) ImageInstructions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.ImageCalls))
	for _, call := range m.ImageCalls {
		out = append(out, call.Instruction)
	}
	return out
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataCalls = nil
	m.ImageCalls = nil
}

// EchoMetadata builds one plausible entry for every name in the request.
func EchoMetadata(req generation.MetadataRequest) []generation.CardMetadata {
	out := make([]generation.CardMetadata, 0, len(req.Names))
	for _, name := range req.Names {
		out = append(out, generation.CardMetadata{
			Name:              name,
			Description:       fmt.Sprintf("%s in a %s deck", name, req.Theme),
			UprightMeaning:    "upright " + name,
			ReversedMeaning:   "reversed " + name,
			VisualInstruction: "illustrate " + name,
		})
	}
	return out
}

// NewMockGeneratorWithError creates a MockGenerator whose calls all fail with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		SynthesizeMetadataFn: func(context.Context, generation.MetadataRequest) ([]generation.CardMetadata, error) {
			return nil, err
		},
		SynthesizeImageFn: func(context.Context, generation.ImageRequest) (*domain.ImageRef, error) {
			return nil, err
		},
	}
}

// MockGeneratorWithRateLimitedImages creates a MockGenerator whose image calls are always rate limited
func MockGeneratorWithRateLimitedImages() *MockGenerator {
	return &MockGenerator{
		SynthesizeImageFn: func(context.Context, generation.ImageRequest) (*domain.ImageRef, error) {
			return nil, generation.ErrRateLimited
		},
	}
}

// MockGeneratorWithContentBlocked creates a MockGenerator that simulates image content being blocked
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{
		SynthesizeImageFn: func(context.Context, generation.ImageRequest) (*domain.ImageRef, error) {
			return nil, generation.ErrContentBlocked
		},
	}
}
