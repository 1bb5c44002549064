package generation

import (
	"context"

	"github.com/phrazzld/deckforge/internal/domain"
)

// MetadataRequest describes one metadata sub-request for a section.
type MetadataRequest struct {
	Section domain.SectionName
	Theme   string
	Style   string

	// Names is the ordered list of card names this sub-request must produce.
	Names []string

	// Part and Parts locate the sub-request within a split section (1-based).
	Part  int
	Parts int
}

// CardMetadata is one raw metadata entry returned by the service.
type CardMetadata struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	UprightMeaning    string `json:"upright_meaning"`
	ReversedMeaning   string `json:"reversed_meaning"`
	VisualInstruction string `json:"visual_instruction"`
}

// ImageRequest describes one image synthesis call.
type ImageRequest struct {
	// Instruction is the fully resolved visual instruction.
	Instruction string

	// Style is the deck-wide visual style applied to every image.
	Style string

	// Reference is an optional style-reference image attached alongside the instruction.
	Reference *domain.ImageRef
}

// Generator is the boundary to the external generative content service.
type Generator interface {
	// SynthesizeMetadata returns one entry per requested name, in order.
	SynthesizeMetadata(ctx context.Context, req MetadataRequest) ([]CardMetadata, error)

	// SynthesizeImage returns the image payload for a single instruction.
	SynthesizeImage(ctx context.Context, req ImageRequest) (*domain.ImageRef, error)
}
