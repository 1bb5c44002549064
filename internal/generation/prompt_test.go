package generation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompts_Metadata(t *testing.T) {
	t.Parallel()

	prompts := DefaultPrompts()
	prompt, err := prompts.Metadata(MetadataRequest{
		Section: domain.SectionMajor,
		Theme:   "deep sea",
		Style:   "woodcut",
		Names:   []string{"The Fool", "The Magician"},
		Part:    1,
		Parts:   2,
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, `"deep sea"`)
	assert.Contains(t, prompt, "woodcut")
	assert.Contains(t, prompt, "Major Arcana")
	assert.Contains(t, prompt, "part 1 of 2")
	assert.Contains(t, prompt, "exactly 2 entries")
	assert.Contains(t, prompt, "1. The Fool")
	assert.Contains(t, prompt, "2. The Magician")
}

func TestPrompts_MetadataSinglePart(t *testing.T) {
	t.Parallel()

	prompt, err := DefaultPrompts().Metadata(MetadataRequest{
		Section: domain.SectionCups,
		Theme:   "t",
		Names:   domain.SectionCups.ExpectedNames(),
	})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "part 1 of 1")
	assert.Contains(t, prompt, "14. King of Cups")

	_, err = DefaultPrompts().Metadata(MetadataRequest{Section: domain.SectionCups})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestPrompts_Image(t *testing.T) {
	t.Parallel()

	prompts := DefaultPrompts()

	plain, err := prompts.Image(ImageRequest{Instruction: "a fox under the moon", Style: "ink"})
	require.NoError(t, err)
	assert.Contains(t, plain, "a fox under the moon")
	assert.Contains(t, plain, "Style: ink.")
	assert.NotContains(t, plain, "reference image")

	withRef, err := prompts.Image(ImageRequest{
		Instruction: "a fox",
		Reference:   &domain.ImageRef{Data: []byte{1}, MIMEType: "image/png"},
	})
	require.NoError(t, err)
	assert.Contains(t, withRef, "reference image")

	_, err = prompts.Image(ImageRequest{})
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}

func TestNewPrompts_CustomAndInvalidPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	custom := filepath.Join(dir, "metadata.tmpl")
	require.NoError(t, os.WriteFile(custom, []byte("cards: {{len .Names}}"), 0o600))

	prompts, err := NewPrompts(custom, "")
	require.NoError(t, err)
	prompt, err := prompts.Metadata(MetadataRequest{Section: domain.SectionWands, Names: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "cards: 2", prompt)

	_, err = NewPrompts(filepath.Join(dir, "missing.tmpl"), "")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	broken := filepath.Join(dir, "broken.tmpl")
	require.NoError(t, os.WriteFile(broken, []byte("{{.Names"), 0o600))
	_, err = NewPrompts("", broken)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
