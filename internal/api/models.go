package api

import (
	"fmt"
	"time"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/progress"
	"github.com/phrazzld/deckforge/internal/redact"
)

// ReferenceImage is an optional style reference attached to image calls.
// Data is base64 encoded in JSON.
type ReferenceImage struct {
	Data     []byte `json:"data"      validate:"required"`
	MIMEType string `json:"mime_type" validate:"required,oneof=image/png image/jpeg image/webp"`
}

func (r *ReferenceImage) toDomain() *domain.ImageRef {
	if r == nil {
		return nil
	}
	return &domain.ImageRef{Data: r.Data, MIMEType: r.MIMEType}
}

// GenerateRequest defines the payload for starting a section run.
type GenerateRequest struct {
	Theme     string          `json:"theme"               validate:"required,max=500"`
	Style     string          `json:"style,omitempty"     validate:"max=1000"`
	Reference *ReferenceImage `json:"reference,omitempty" validate:"omitempty"`
}

// RegenerateRequest defines the optional payload for regenerating one item image.
type RegenerateRequest struct {
	Instruction string          `json:"instruction,omitempty" validate:"max=4000"`
	Style       string          `json:"style,omitempty"       validate:"max=1000"`
	Reference   *ReferenceImage `json:"reference,omitempty"   validate:"omitempty"`
}

// GenerateResponse acknowledges an accepted section run.
type GenerateResponse struct {
	Section     domain.SectionName `json:"section"`
	Status      string             `json:"status"`
	ProgressURL string             `json:"progress_url"`
}

// ProgressResponse reports the latest run status of a section.
type ProgressResponse struct {
	progress.Snapshot
	Active bool `json:"active"`
}

// ItemResponse is the client view of an item. Image bytes are served separately.
type ItemResponse struct {
	ID                string             `json:"id"`
	Section           domain.SectionName `json:"section"`
	Ordinal           int                `json:"ordinal"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	UprightMeaning    string             `json:"upright_meaning"`
	ReversedMeaning   string             `json:"reversed_meaning"`
	VisualInstruction string             `json:"visual_instruction"`
	Status            domain.ItemStatus  `json:"status"`
	ImageURL          string             `json:"image_url,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// SectionResponse is the client view of a section.
type SectionResponse struct {
	Name   domain.SectionName  `json:"name"`
	Label  string              `json:"label"`
	State  domain.SectionState `json:"state"`
	Ready  int                 `json:"ready"`
	Failed int                 `json:"failed"`
	Items  []ItemResponse      `json:"items"`
}

// DeckResponse is the client view of the whole deck, sections in canonical order.
type DeckResponse struct {
	Version  uint64            `json:"version"`
	Sections []SectionResponse `json:"sections"`
}

func itemToResponse(item domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:                item.ID,
		Section:           item.Section,
		Ordinal:           item.Ordinal,
		Name:              item.Name,
		Description:       item.Description,
		UprightMeaning:    item.UprightMeaning,
		ReversedMeaning:   item.ReversedMeaning,
		VisualInstruction: item.VisualInstruction,
		Status:            item.Status,
		UpdatedAt:         item.UpdatedAt,
	}
	if item.Image != nil && !item.Image.IsFallback() {
		resp.ImageURL = fmt.Sprintf("/api/items/%s/image", item.ID)
	}
	return resp
}

func sectionToResponse(section domain.Section) SectionResponse {
	ready, failed := section.Counts()
	items := make([]ItemResponse, 0, len(section.Items))
	for _, item := range section.Items {
		items = append(items, itemToResponse(item))
	}
	return SectionResponse{
		Name:   section.Name,
		Label:  section.Name.Label(),
		State:  section.State(),
		Ready:  ready,
		Failed: failed,
		Items:  items,
	}
}

func deckToResponse(deck domain.Deck) DeckResponse {
	resp := DeckResponse{
		Version:  deck.Version,
		Sections: make([]SectionResponse, 0, len(domain.SectionNames)),
	}
	for _, name := range domain.SectionNames {
		resp.Sections = append(resp.Sections, sectionToResponse(deck.Sections[name]))
	}
	return resp
}

func progressToResponse(snap progress.Snapshot, active bool) ProgressResponse {
	snap.Error = redact.String(snap.Error)
	return ProgressResponse{Snapshot: snap, Active: active}
}
