package domain

import (
	"fmt"
	"time"
)

// ItemStatus represents the image state of a deck item.
type ItemStatus string

// Possible item status values.
const (
	ItemStatusNeedsImage      ItemStatus = "needs-image"
	ItemStatusImageInProgress ItemStatus = "image-in-progress"
	ItemStatusImageReady      ItemStatus = "image-ready"
	ItemStatusImageFailed     ItemStatus = "image-failed"
)

// Valid reports whether the status is recognised.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusNeedsImage, ItemStatusImageInProgress, ItemStatusImageReady, ItemStatusImageFailed:
		return true
	}
	return false
}

// Terminal reports whether the image stage for the item has finished.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusImageReady || s == ItemStatusImageFailed
}

// FallbackMarker is the MIME type carried by the placeholder image reference.
const FallbackMarker = "application/x-deckforge-fallback"

// ImageRef is an opaque reference to a produced image payload.
type ImageRef struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// FallbackImage returns the placeholder substituted when image synthesis fails permanently.
func FallbackImage() *ImageRef {
	return &ImageRef{MIMEType: FallbackMarker}
}

// IsFallback reports whether the reference is the placeholder marker.
func (r *ImageRef) IsFallback() bool {
	return r != nil && r.MIMEType == FallbackMarker
}

// Clone returns a deep copy of the reference.
func (r *ImageRef) Clone() *ImageRef {
	if r == nil {
		return nil
	}
	out := &ImageRef{MIMEType: r.MIMEType}
	if r.Data != nil {
		out.Data = make([]byte, len(r.Data))
		copy(out.Data, r.Data)
	}
	return out
}

// Item is one generated deck entry.
type Item struct {
	ID                string      `json:"id"`
	Section           SectionName `json:"section"`
	Ordinal           int         `json:"ordinal"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	UprightMeaning    string      `json:"upright_meaning"`
	ReversedMeaning   string      `json:"reversed_meaning"`
	VisualInstruction string      `json:"visual_instruction"`
	Image             *ImageRef   `json:"image,omitempty"`
	Status            ItemStatus  `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewItemID derives an item identifier from its section, ordinal position and
// creation time. Identifiers are unique within a run and never change.
func NewItemID(section SectionName, ordinal int, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d-%d", section, ordinal, createdAt.UnixNano())
}

// NewItem creates an item awaiting its image.
func NewItem(section SectionName, ordinal int, createdAt time.Time) Item {
	return Item{
		ID:        NewItemID(section, ordinal, createdAt),
		Section:   section,
		Ordinal:   ordinal,
		Status:    ItemStatusNeedsImage,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Validate checks the invariants of an item.
func (i Item) Validate() error {
	if i.ID == "" {
		return ErrEmptyItemID
	}
	if !i.Section.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSection, i.Section)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidItemStatus, i.Status)
	}
	return nil
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	out.Image = i.Image.Clone()
	return out
}

// WithStatus returns a copy of the item with the given status and update time.
func (i Item) WithStatus(status ItemStatus, at time.Time) Item {
	out := i.Clone()
	out.Status = status
	out.UpdatedAt = at
	return out
}

// WithImage returns a copy of the item carrying the image outcome. A fallback
// reference marks the item image-failed, any other reference image-ready.
func (i Item) WithImage(ref *ImageRef, at time.Time) Item {
	out := i.Clone()
	out.Image = ref.Clone()
	out.UpdatedAt = at
	if ref == nil || ref.IsFallback() {
		out.Status = ItemStatusImageFailed
		if out.Image == nil {
			out.Image = FallbackImage()
		}
	} else {
		out.Status = ItemStatusImageReady
	}
	return out
}
