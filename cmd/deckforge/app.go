package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckforge/internal/api"
	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
	"github.com/phrazzld/deckforge/internal/generation"
	"github.com/phrazzld/deckforge/internal/orchestrator"
	"github.com/phrazzld/deckforge/internal/platform/gemini"
	"github.com/phrazzld/deckforge/internal/platform/openai"
	"github.com/phrazzld/deckforge/internal/platform/postgres"
	"github.com/phrazzld/deckforge/internal/progress"
	"github.com/phrazzld/deckforge/internal/retry"
	"github.com/phrazzld/deckforge/internal/store"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when the deck is kept in memory only
	db *sql.DB

	deck       *domain.DeckState
	emitter    *events.InMemoryEmitter
	registry   *progress.Registry
	controller *orchestrator.Controller
	handler    *api.DeckHandler

	cancelRuns context.CancelFunc
}

// newApplication wires the orchestrator around generator. When db is non-nil
// the deck is restored from it and every published change is recorded back.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	generator generation.Generator,
	db *sql.DB,
	opts ...orchestrator.Option,
) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		emitter:  events.NewInMemoryEmitter(logger),
		registry: progress.NewRegistry(),
	}

	if db != nil {
		deckStore := postgres.NewDeckStore(db, logger)
		deck, err := store.Restore(ctx, deckStore, time.Now().UTC(), logger)
		if err != nil {
			return nil, err
		}
		app.deck = deck
		app.emitter.RegisterHandler(store.NewRecorder(deckStore, logger))
	} else {
		app.deck = domain.NewDeckState()
		logger.Warn("no database configured, deck is kept in memory only")
	}

	controllerOpts := append([]orchestrator.Option{
		orchestrator.WithEmitter(app.emitter),
		orchestrator.WithRegistry(app.registry),
		orchestrator.WithClassifier(generation.NewClassifier(cfg.LLM.RateLimitPatterns)),
	}, opts...)

	var err error
	app.controller, err = orchestrator.NewController(
		app.deck,
		generator,
		orchestratorConfig(cfg.Generation),
		logger,
		controllerOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.cancelRuns = cancel
	app.handler = api.NewDeckHandler(runCtx, app.controller, app.deck, app.registry, logger)

	logger.Info("application initialized successfully",
		"deck_version", app.deck.Version())
	return app, nil
}

// orchestratorConfig maps the configured generation policy.
func orchestratorConfig(cfg config.GenerationConfig) orchestrator.Config {
	return orchestrator.Config{
		Retry: retry.Policy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.InitialDelay,
			GrowthFactor: cfg.GrowthFactor,
		},
		BatchSize:      cfg.BatchSize,
		MetadataPacing: cfg.MetadataPacing,
		ImagePacing:    cfg.ImagePacing,
	}
}

// newGenerator creates the configured generation service client.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	log := logger.With("component", "llm_generator")

	var (
		generator generation.Generator
		err       error
	)
	switch cfg.Provider {
	case "gemini":
		generator, err = gemini.NewGenerator(ctx, log, cfg)
	case "openai":
		generator, err = openai.NewGenerator(log, cfg)
	default:
		err = fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	logger.Info("LLM generator initialized successfully", "provider", cfg.Provider)
	return generator, nil
}

// openDatabase connects and migrates when a database URL is configured.
// It returns nil without error when persistence is disabled.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.URL, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return db, nil
}

// cleanup cancels background runs, waits for them and closes the database.
func (app *application) cleanup() {
	if app.cancelRuns != nil {
		app.cancelRuns()
	}
	if app.handler != nil {
		app.handler.Wait()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
