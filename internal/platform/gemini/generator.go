package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the Generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	models        contentGenerator
	prompts       *generation.Prompts
	metadataModel string
	imageModel    string
	logger        *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, logger, cfg)
}

func newGenerator(models contentGenerator, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MetadataModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("%w: model names cannot be empty", generation.ErrInvalidConfig)
	}

	prompts, err := generation.NewPrompts(cfg.MetadataPromptPath, cfg.ImagePromptPath)
	if err != nil {
		return nil, err
	}

	return &Generator{
		models:        models,
		prompts:       prompts,
		metadataModel: cfg.MetadataModel,
		imageModel:    cfg.ImageModel,
		logger:        logger.With("component", "gemini_generator"),
	}, nil
}

// metadataSchema constrains the metadata response to an array of card entries.
var metadataSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":               {Type: genai.TypeString},
			"description":        {Type: genai.TypeString},
			"upright_meaning":    {Type: genai.TypeString},
			"reversed_meaning":   {Type: genai.TypeString},
			"visual_instruction": {Type: genai.TypeString},
		},
		Required: []string{"name", "description", "upright_meaning", "reversed_meaning", "visual_instruction"},
	},
}

// SynthesizeMetadata implements generation.Generator.
func (g *Generator) SynthesizeMetadata(
	ctx context.Context,
	req generation.MetadataRequest,
) ([]generation.CardMetadata, error) {
	prompt, err := g.prompts.Metadata(req)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "requesting card metadata",
		"model", g.metadataModel,
		"section", req.Section,
		"names", len(req.Names),
		"prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.metadataModel, userContent(prompt, nil), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   metadataSchema,
	})
	if err != nil {
		return nil, translateError(err)
	}

	parts, err := candidateParts(resp)
	if err != nil {
		return nil, err
	}

	entries, err := generation.ParseMetadata(collectText(parts))
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "card metadata received", "entries", len(entries))
	return entries, nil
}

// SynthesizeImage implements generation.Generator.
func (g *Generator) SynthesizeImage(ctx context.Context, req generation.ImageRequest) (*domain.ImageRef, error) {
	prompt, err := g.prompts.Image(req)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "requesting card image",
		"model", g.imageModel,
		"prompt_length", len(prompt),
		"has_reference", req.Reference != nil)

	resp, err := g.models.GenerateContent(ctx, g.imageModel, userContent(prompt, req.Reference), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, translateError(err)
	}

	parts, err := candidateParts(resp)
	if err != nil {
		return nil, err
	}

	for _, part := range parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &domain.ImageRef{Data: part.InlineData.Data, MIMEType: mimeType}, nil
		}
	}
	return nil, fmt.Errorf("%w: response contains no image data", generation.ErrInvalidResponse)
}

func userContent(prompt string, reference *domain.ImageRef) []*genai.Content {
	parts := []*genai.Part{{Text: prompt}}
	if reference != nil && len(reference.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: reference.Data, MIMEType: reference.MIMEType},
		})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}

// candidateParts returns the parts of the first candidate, mapping blocked or
// empty responses to the generation error taxonomy.
func candidateParts(resp *genai.GenerateContentResponse) ([]*genai.Part, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
		return nil, fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}
	return candidate.Content.Parts, nil
}

func collectText(parts []*genai.Part) string {
	var b strings.Builder
	for _, part := range parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
