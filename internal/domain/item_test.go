package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewItemID_UniquePerOrdinal(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 42)
	a := NewItemID(SectionCups, 0, now)
	b := NewItemID(SectionCups, 1, now)
	c := NewItemID(SectionSwords, 0, now)

	assert.Equal(t, "cups-0-1700000000000000042", a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestItem_WithImage(t *testing.T) {
	t.Parallel()

	now := time.Unix(100, 0)
	item := NewItem(SectionMajor, 3, now)
	assert.Equal(t, ItemStatusNeedsImage, item.Status)

	ready := item.WithImage(&ImageRef{Data: []byte{1, 2}, MIMEType: "image/png"}, now.Add(time.Second))
	assert.Equal(t, ItemStatusImageReady, ready.Status)
	assert.Equal(t, []byte{1, 2}, ready.Image.Data)
	assert.Nil(t, item.Image, "original item is not mutated")

	failed := item.WithImage(FallbackImage(), now)
	assert.Equal(t, ItemStatusImageFailed, failed.Status)
	assert.True(t, failed.Image.IsFallback())

	missing := item.WithImage(nil, now)
	assert.Equal(t, ItemStatusImageFailed, missing.Status)
	assert.True(t, missing.Image.IsFallback())
}

func TestItem_Validate(t *testing.T) {
	t.Parallel()

	item := NewItem(SectionPentacles, 0, time.Now())
	assert.NoError(t, item.Validate())

	item.Status = "bogus"
	assert.ErrorIs(t, item.Validate(), ErrInvalidItemStatus)

	item.Status = ItemStatusImageReady
	item.Section = "coins"
	assert.ErrorIs(t, item.Validate(), ErrInvalidSection)

	item.ID = ""
	assert.ErrorIs(t, item.Validate(), ErrEmptyItemID)
}

func TestItem_CloneIsDeep(t *testing.T) {
	t.Parallel()

	item := Item{ID: "x", Image: &ImageRef{Data: []byte{9}, MIMEType: "image/png"}}
	clone := item.Clone()
	clone.Image.Data[0] = 1

	assert.Equal(t, byte(9), item.Image.Data[0])
}
