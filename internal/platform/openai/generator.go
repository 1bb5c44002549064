package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
)

const providerName = "openai"

const systemPrompt = `You write tarot card content. Respond with a JSON object of the form {"cards": [...]} and nothing else.`

// Generator implements generation.Generator using the OpenAI API.
type Generator struct {
	client        oai.Client
	prompts       *generation.Prompts
	metadataModel string
	imageModel    string
	logger        *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration. Extra request
// options are appended after the configured ones.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig, opts ...option.RequestOption) (*Generator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MetadataModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("%w: model names cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	prompts, err := generation.NewPrompts(cfg.MetadataPromptPath, cfg.ImagePromptPath)
	if err != nil {
		return nil, err
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		requestOpts = append(requestOpts, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	requestOpts = append(requestOpts, opts...)

	return &Generator{
		client:        oai.NewClient(requestOpts...),
		prompts:       prompts,
		metadataModel: cfg.MetadataModel,
		imageModel:    cfg.ImageModel,
		logger:        logger.With("component", "openai_generator"),
	}, nil
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
		"names", len(req.Names))

	resp, err := g.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: oai.ChatModel(g.metadataModel),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(prompt),
		},
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, translateError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", generation.ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, fmt.Errorf("%w: completion filtered", generation.ErrContentBlocked)
	}
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, choice.Message.Refusal)
	}

	return generation.ParseMetadata(choice.Message.Content)
}

// SynthesizeImage implements generation.Generator. With a reference image the
// edit endpoint is used so the output follows the reference's style.
func (g *Generator) SynthesizeImage(ctx context.Context, req generation.ImageRequest) (*domain.ImageRef, error) {
	prompt, err := g.prompts.Image(req)
	if err != nil {
		return nil, err
	}

	hasReference := req.Reference != nil && len(req.Reference.Data) > 0
	g.logger.DebugContext(ctx, "requesting card image",
		"model", g.imageModel,
		"prompt_length", len(prompt),
		"has_reference", hasReference)

	var resp *oai.ImagesResponse
	if hasReference {
		params := oai.ImageEditParams{
			Prompt: prompt,
			Model:  oai.ImageModel(g.imageModel),
			Image: oai.ImageEditParamsImageUnion{
				OfFile: oai.File(bytes.NewReader(req.Reference.Data), referenceFilename(req.Reference.MIMEType), req.Reference.MIMEType),
			},
		}
		if g.supportsResponseFormat() {
			params.ResponseFormat = oai.ImageEditParamsResponseFormatB64JSON
		}
		resp, err = g.client.Images.Edit(ctx, params)
	} else {
		params := oai.ImageGenerateParams{
			Prompt: prompt,
			Model:  oai.ImageModel(g.imageModel),
			Size:   oai.ImageGenerateParamsSize1024x1536,
		}
		if g.supportsResponseFormat() {
			params.ResponseFormat = oai.ImageGenerateParamsResponseFormatB64JSON
			params.Size = oai.ImageGenerateParamsSize1024x1792
		}
		resp, err = g.client.Images.Generate(ctx, params)
	}
	if err != nil {
		return nil, translateError(err)
	}

	return decodeImage(resp)
}

// supportsResponseFormat reports whether the model accepts response_format;
// gpt-image models always return base64 and reject the parameter.
func (g *Generator) supportsResponseFormat() bool {
	return strings.HasPrefix(g.imageModel, "dall-e")
}

func decodeImage(resp *oai.ImagesResponse) (*domain.ImageRef, error) {
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: response contains no image data", generation.ErrInvalidResponse)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", generation.ErrInvalidResponse, err)
	}

	mimeType := "image/png"
	switch format := string(resp.OutputFormat); format {
	case "jpeg", "webp":
		mimeType = "image/" + format
	}
	return &domain.ImageRef{Data: data, MIMEType: mimeType}, nil
}

func referenceFilename(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "reference.jpg"
	case "image/webp":
		return "reference.webp"
	default:
		return "reference.png"
	}
}

// translateError converts SDK errors into the generation error taxonomy.
func translateError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		providerErr := &generation.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Status:     apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
		if apiErr.Code == "content_policy_violation" || apiErr.Code == "moderation_blocked" {
			return fmt.Errorf("%w: %w", generation.ErrContentBlocked, providerErr)
		}
		return providerErr
	}

	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}
