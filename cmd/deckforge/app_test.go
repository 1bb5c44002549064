package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/generation"
	"github.com/phrazzld/deckforge/internal/mocks"
	"github.com/phrazzld/deckforge/internal/orchestrator"
	"github.com/phrazzld/deckforge/internal/platform/logger"
	"github.com/phrazzld/deckforge/internal/platform/openai"
	"github.com/phrazzld/deckforge/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, gen generation.Generator) *application {
	t.Helper()

	_, log, cleanup := logger.SetupTestLogger(t, nil)
	t.Cleanup(cleanup)

	cfg := config.Default()
	app, err := newApplication(context.Background(), &cfg, log, gen, nil,
		orchestrator.WithClock(clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestOrchestratorConfig(t *testing.T) {
	got := orchestratorConfig(config.GenerationConfig{
		MaxRetries:     2,
		InitialDelay:   5 * time.Second,
		GrowthFactor:   2,
		BatchSize:      10,
		MetadataPacing: time.Second,
		ImagePacing:    2 * time.Second,
	})

	assert.Equal(t, retry.Policy{MaxRetries: 2, InitialDelay: 5 * time.Second, GrowthFactor: 2}, got.Retry)
	assert.Equal(t, 10, got.BatchSize)
	assert.Equal(t, time.Second, got.MetadataPacing)
	assert.Equal(t, 2*time.Second, got.ImagePacing)

	assert.Equal(t, orchestrator.DefaultConfig(), orchestratorConfig(config.Default().Generation))
}

func TestNewGenerator(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	ctx := context.Background()

	t.Run("unknown provider", func(t *testing.T) {
		_, err := newGenerator(ctx, config.LLMConfig{Provider: "other"}, log)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("gemini without key", func(t *testing.T) {
		cfg := config.Default().LLM
		_, err := newGenerator(ctx, cfg, log)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("openai", func(t *testing.T) {
		cfg := config.Default().LLM
		cfg.Provider = "openai"
		cfg.OpenAIAPIKey = "test-key"
		gen, err := newGenerator(ctx, cfg, log)
		require.NoError(t, err)
		assert.IsType(t, &openai.Generator{}, gen)
	})
}

func TestOpenDatabase_Disabled(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	db, err := openDatabase(context.Background(), config.DatabaseConfig{}, log)
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestRunGenerate(t *testing.T) {
	app := newTestApp(t, &mocks.MockGenerator{})

	var out strings.Builder
	err := app.runGenerate(context.Background(), &out, orchestrator.Request{
		Section: domain.SectionCups,
		Theme:   "tide pools",
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "[cups] stage metadata")
	assert.Contains(t, text, "[cups] metadata ready for 14 items")
	assert.Contains(t, text, "[cups] Ace of Cups: image-ready")
	assert.Contains(t, text, "[cups] images 14/14")
	assert.Contains(t, text, "[cups] done")
	assert.Contains(t, text, "Cups: 14 ready, 0 failed")

	section, err := app.deck.Section(domain.SectionCups)
	require.NoError(t, err)
	assert.Equal(t, domain.SectionComplete, section.State())
}

func TestRunGenerate_MetadataFailure(t *testing.T) {
	gen := mocks.NewMockGeneratorWithError(fmt.Errorf("%w: truncated JSON", generation.ErrInvalidResponse))
	app := newTestApp(t, gen)

	var out strings.Builder
	err := app.runGenerate(context.Background(), &out, orchestrator.Request{
		Section: domain.SectionWands,
		Theme:   "embers",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, orchestrator.ErrMetadataStage)
	assert.Contains(t, out.String(), "[wands] failed:")
	assert.Empty(t, app.deck.Snapshot().Sections[domain.SectionWands].Items)
}

func TestRunGenerate_Validation(t *testing.T) {
	gen := &mocks.MockGenerator{}
	app := newTestApp(t, gen)

	var out strings.Builder
	err := app.runGenerate(context.Background(), &out, orchestrator.Request{Section: domain.SectionMajor})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, gen.MetadataCallCount())
}
