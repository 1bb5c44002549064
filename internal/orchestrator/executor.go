package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
)

// Executor issues single calls to the generation service.
type Executor struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewExecutor creates an Executor over generator.
func NewExecutor(generator generation.Generator, logger *slog.Logger) (*Executor, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		generator: generator,
		logger:    logger.With("component", "step_executor"),
	}, nil
}

// Metadata issues one metadata call.
func (e *Executor) Metadata(ctx context.Context, req generation.MetadataRequest) ([]generation.CardMetadata, error) {
	e.logger.DebugContext(ctx, "issuing metadata call",
		"section", req.Section,
		"part", req.Part,
		"parts", req.Parts,
		"names", len(req.Names))

	entries, err := e.generator.SynthesizeMetadata(ctx, req)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Image issues one image call. The reference is attached only when it carries data.
func (e *Executor) Image(ctx context.Context, instruction, style string, reference *domain.ImageRef) (*domain.ImageRef, error) {
	req := generation.ImageRequest{
		Instruction: instruction,
		Style:       style,
	}
	if reference != nil && len(reference.Data) > 0 {
		req.Reference = reference
	}

	e.logger.DebugContext(ctx, "issuing image call",
		"instruction_length", len(instruction),
		"has_reference", req.Reference != nil)

	ref, err := e.generator.SynthesizeImage(ctx, req)
	if err != nil {
		return nil, err
	}
	if ref == nil || len(ref.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", generation.ErrInvalidResponse)
	}
	return ref, nil
}
