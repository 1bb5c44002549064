package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/progress"
)

// RegenerateRequest is the input of a single-item image regeneration.
type RegenerateRequest struct {
	ItemID string

	// Instruction replaces the stored visual instruction when non-empty.
	Instruction string

	Style     string
	Reference *domain.ImageRef
}

// RegenerateImage produces a fresh image for one item. A failed image call marks
// the item image-failed with the fallback marker and is not returned as an error;
// only a missing item, invalid input or a cancelled context fail the call.
func (c *Controller) RegenerateImage(ctx context.Context, req RegenerateRequest) (*domain.Item, error) {
	if strings.TrimSpace(req.ItemID) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyItemID)
	}

	original, err := c.deck.FindItem(req.ItemID)
	if err != nil {
		return nil, err
	}
	item := original.Clone()

	log := c.logger.With("item_id", item.ID, "section", item.Section)

	instruction := strings.TrimSpace(req.Instruction)
	if instruction != "" {
		item.VisualInstruction = instruction
	} else {
		instruction = item.VisualInstruction
	}
	if instruction == "" {
		instruction = strings.TrimSpace(item.Name + ". " + item.Description)
	}

	inProgress := item.WithStatus(domain.ItemStatusImageInProgress, c.clock.Now())
	c.publishItem(ctx, inProgress, progress.Snapshot{})

	log.InfoContext(ctx, "regenerating item image", "override", req.Instruction != "")

	ref, cause := c.produceImage(ctx, item.Section, item.ID, c.uniqueInstruction(instruction), req.Style, req.Reference)
	if ctx.Err() != nil {
		c.publishItem(ctx, original, progress.Snapshot{})
		return nil, ctx.Err()
	}
	if cause != nil {
		log.WarnContext(ctx, "item image regeneration failed, using fallback", "error", cause)
	}

	updated := inProgress.WithImage(ref, c.clock.Now())
	c.publishItem(ctx, updated, progress.Snapshot{})
	return &updated, nil
}

// uniqueInstruction appends a token so that successive instructions for the
// same item are never identical.
func (c *Controller) uniqueInstruction(instruction string) string {
	return fmt.Sprintf("%s\n\nVariation %s-%d", instruction, uuid.NewString(), c.clock.Now().UnixNano())
}
