package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModels records requests and replays a canned response.
type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:      "gemini",
		GeminiAPIKey:  "test-key",
		MetadataModel: "meta-model",
		ImageModel:    "image-model",
	}
}

func newTestGenerator(t *testing.T, models *fakeModels) *Generator {
	t.Helper()
	g, err := newGenerator(models, nil, testConfig())
	require.NoError(t, err)
	return g
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	_, err := NewGenerator(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.ImageModel = ""
	_, err = newGenerator(&fakeModels{}, nil, cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.MetadataPromptPath = "/does/not/exist.tmpl"
	_, err = newGenerator(&fakeModels{}, nil, cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestSynthesizeMetadata(t *testing.T) {
	models := &fakeModels{resp: textResponse(`[
		{"name": "The Fool", "description": "a wanderer", "upright_meaning": "beginnings",
		 "reversed_meaning": "recklessness", "visual_instruction": "a figure at a cliff edge"},
		{"name": "The Magician", "description": "a maker", "upright_meaning": "skill",
		 "reversed_meaning": "trickery", "visual_instruction": "a figure with raised wand"}
	]`)}
	g := newTestGenerator(t, models)

	entries, err := g.SynthesizeMetadata(context.Background(), generation.MetadataRequest{
		Section: domain.SectionMajor,
		Theme:   "coral reefs",
		Names:   []string{"The Fool", "The Magician"},
		Part:    1,
		Parts:   2,
	})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "The Magician", entries[1].Name)
	assert.Equal(t, "a figure at a cliff edge", entries[0].VisualInstruction)

	assert.Equal(t, "meta-model", models.model)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	assert.Equal(t, genai.TypeArray, models.config.ResponseSchema.Type)
	require.Len(t, models.contents, 1)
	assert.Contains(t, models.contents[0].Parts[0].Text, "coral reefs")
}

func TestSynthesizeMetadata_Failures(t *testing.T) {
	tests := []struct {
		name    string
		models  *fakeModels
		wantErr error
	}{
		{
			name:    "malformed json",
			models:  &fakeModels{resp: textResponse(`[{"name": `)},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			models:  &fakeModels{resp: &genai.GenerateContentResponse{}},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "safety block",
			models: &fakeModels{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "sdk failure",
			models:  &fakeModels{err: errors.New("connection reset")},
			wantErr: generation.ErrGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, tt.models)
			_, err := g.SynthesizeMetadata(context.Background(), generation.MetadataRequest{
				Section: domain.SectionCups,
				Theme:   "tides",
				Names:   []string{"Ace of Cups"},
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSynthesizeImage(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here is your card"},
				{InlineData: &genai.Blob{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}},
			}},
		}},
	}}
	g := newTestGenerator(t, models)
	reference := &domain.ImageRef{Data: []byte{9}, MIMEType: "image/png"}

	ref, err := g.SynthesizeImage(context.Background(), generation.ImageRequest{
		Instruction: "a lighthouse in a storm",
		Style:       "linocut",
		Reference:   reference,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3}, ref.Data)
	assert.Equal(t, "image/jpeg", ref.MIMEType)
	assert.Equal(t, "image-model", models.model)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, models.config.ResponseModalities)

	parts := models.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "a lighthouse in a storm")
	assert.Equal(t, []byte{9}, parts[1].InlineData.Data)
}

func TestSynthesizeImage_NoImage(t *testing.T) {
	g := newTestGenerator(t, &fakeModels{resp: textResponse("I cannot draw that")})

	_, err := g.SynthesizeImage(context.Background(), generation.ImageRequest{Instruction: "a moon"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestSynthesizeImage_EmptyInstruction(t *testing.T) {
	models := &fakeModels{}
	g := newTestGenerator(t, models)

	_, err := g.SynthesizeImage(context.Background(), generation.ImageRequest{})
	assert.ErrorIs(t, err, generation.ErrEmptyInstruction)
	assert.Empty(t, models.model, "no call is made")
}

func TestTranslateError(t *testing.T) {
	t.Run("quota exhaustion is rate limited", func(t *testing.T) {
		err := translateError(genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"})

		var providerErr *generation.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, 429, providerErr.StatusCode)
		assert.Equal(t, generation.RateLimited, generation.DefaultClassifier(err))
	})

	t.Run("bad request is fatal", func(t *testing.T) {
		err := translateError(genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad schema"})
		assert.Equal(t, generation.Fatal, generation.DefaultClassifier(err))
	})

	t.Run("context errors pass through", func(t *testing.T) {
		assert.Same(t, context.Canceled, translateError(context.Canceled))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, translateError(nil))
	})
}
