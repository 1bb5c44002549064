package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deckforge/internal/batch"
	"github.com/phrazzld/deckforge/internal/clock"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
	"github.com/phrazzld/deckforge/internal/generation"
	"github.com/phrazzld/deckforge/internal/pacing"
	"github.com/phrazzld/deckforge/internal/progress"
	"github.com/phrazzld/deckforge/internal/retry"
)

// Pacing defaults between consecutive calls of the same sequence.
const (
	DefaultMetadataPacing = 3 * time.Second
	DefaultImagePacing    = 4 * time.Second
)

// Config holds the generation policy.
type Config struct {
	Retry          retry.Policy
	BatchSize      int
	MetadataPacing time.Duration
	ImagePacing    time.Duration
}

// DefaultConfig returns the policy tuned for per-minute quotas.
func DefaultConfig() Config {
	return Config{
		Retry:          retry.DefaultPolicy(),
		BatchSize:      batch.DefaultMaxSize,
		MetadataPacing: DefaultMetadataPacing,
		ImagePacing:    DefaultImagePacing,
	}
}

// Request is the input of one section run.
type Request struct {
	Section   domain.SectionName
	Theme     string
	Style     string
	Reference *domain.ImageRef
}

// Validate rejects requests before any external call is made.
func (r Request) Validate() error {
	if !r.Section.Valid() {
		return fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidSection, r.Section)
	}
	if strings.TrimSpace(r.Theme) == "" {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTheme)
	}
	return nil
}

// Outcome summarises a finished section run.
type Outcome struct {
	RunID    uuid.UUID
	Section  domain.Section
	Ready    int
	Failed   int
	Progress progress.Snapshot
}

// Controller runs section generation and single-item regeneration.
type Controller struct {
	deck     *domain.DeckState
	executor *Executor
	emitter  events.Emitter
	registry *progress.Registry
	classify generation.Classifier
	clock    clock.Clock
	config   Config
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for pacing and backoff.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		if c != nil {
			ctrl.clock = c
		}
	}
}

// WithClassifier sets the failure classifier.
func WithClassifier(classify generation.Classifier) Option {
	return func(ctrl *Controller) {
		if classify != nil {
			ctrl.classify = classify
		}
	}
}

// WithEmitter sets the progress event emitter.
func WithEmitter(emitter events.Emitter) Option {
	return func(ctrl *Controller) {
		if emitter != nil {
			ctrl.emitter = emitter
		}
	}
}

// WithRegistry sets the registry that keeps the latest snapshot per section.
func WithRegistry(registry *progress.Registry) Option {
	return func(ctrl *Controller) {
		if registry != nil {
			ctrl.registry = registry
		}
	}
}

// NewController creates a Controller. Zero-valued config fields take their defaults.
func NewController(
	deck *domain.DeckState,
	generator generation.Generator,
	config Config,
	logger *slog.Logger,
	opts ...Option,
) (*Controller, error) {
	if deck == nil {
		return nil, fmt.Errorf("%w: deck state", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	executor, err := NewExecutor(generator, logger)
	if err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	if config.Retry == (retry.Policy{}) {
		config.Retry = defaults.Retry
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MetadataPacing <= 0 {
		config.MetadataPacing = defaults.MetadataPacing
	}
	if config.ImagePacing <= 0 {
		config.ImagePacing = defaults.ImagePacing
	}

	ctrl := &Controller{
		deck:     deck,
		executor: executor,
		emitter:  events.NewInMemoryEmitter(logger),
		registry: progress.NewRegistry(),
		classify: generation.DefaultClassifier,
		clock:    clock.Real{},
		config:   config,
		logger:   logger.With("component", "generation_controller"),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl, nil
}

// Registry returns the registry holding the latest snapshot per section.
func (c *Controller) Registry() *progress.Registry {
	return c.registry
}

// GenerateSection runs both stages for one section. It returns an error only
// for validation failures and for failures of the metadata stage; image
// failures are absorbed into item status.
func (c *Controller) GenerateSection(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	log := c.logger.With("run_id", runID.String(), "section", req.Section)
	reporter := progress.NewReporter(runID, req.Section, req.Section.ExpectedSize(), c.clock, c.registry)

	log.InfoContext(ctx, "starting section generation",
		"theme_length", len(req.Theme),
		"has_reference", req.Reference != nil)
	c.emitStage(ctx, req.Section, reporter.Snapshot())

	items, err := c.runMetadataStage(ctx, req, runID)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMetadataStage, err)
		snap := reporter.Finish(err)
		log.ErrorContext(ctx, "section generation aborted", "error", err)
		c.emitFinished(ctx, req.Section, snap)
		return nil, err
	}

	version, err := c.deck.ReplaceSection(domain.Section{Name: req.Section, Items: items})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMetadataStage, err)
		snap := reporter.Finish(err)
		c.emitFinished(ctx, req.Section, snap)
		return nil, err
	}
	reporter.SetTotal(len(items))
	c.emitSection(ctx, req.Section, items, version, reporter.Snapshot())
	log.InfoContext(ctx, "metadata stage complete", "items", len(items), "deck_version", version)

	snap, err := reporter.SetStage(progress.StageImages)
	if err == nil {
		c.emitStage(ctx, req.Section, snap)
	}

	if err := c.runImageStage(ctx, req, items, reporter, log); err != nil {
		snap := reporter.Finish(err)
		log.WarnContext(ctx, "image stage interrupted", "error", err)
		c.emitFinished(ctx, req.Section, snap)
		return nil, err
	}

	final := reporter.Finish(nil)
	section, err := c.deck.Section(req.Section)
	if err != nil {
		return nil, err
	}
	ready, failed := section.Counts()
	log.InfoContext(ctx, "section generation complete",
		"ready", ready,
		"failed", failed,
		"state", section.State())
	c.emitFinished(ctx, req.Section, final)

	return &Outcome{
		RunID:    runID,
		Section:  section,
		Ready:    ready,
		Failed:   failed,
		Progress: final,
	}, nil
}

// runMetadataStage obtains the metadata for every canonical name of the section
// and builds the items in arrival order.
func (c *Controller) runMetadataStage(ctx context.Context, req Request, runID uuid.UUID) ([]domain.Item, error) {
	names := req.Section.ExpectedNames()
	requests, err := batch.Split(names, c.config.BatchSize)
	if err != nil {
		return nil, err
	}

	runner := batch.NewRunner(c.clock, c.config.MetadataPacing)
	retrier := c.retrierFor(req.Section, "")

	entries, err := batch.Run(ctx, runner, requests,
		func(ctx context.Context, sub batch.Request) ([]generation.CardMetadata, error) {
			metaReq := generation.MetadataRequest{
				Section: req.Section,
				Theme:   req.Theme,
				Style:   req.Style,
				Names:   sub.Names,
				Part:    sub.Index + 1,
				Parts:   sub.Count,
			}
			return retry.Execute(ctx, retrier, func(ctx context.Context) ([]generation.CardMetadata, error) {
				return c.executor.Metadata(ctx, metaReq)
			}, c.classify)
		})
	if err != nil {
		return nil, err
	}

	if len(entries) != len(names) {
		return nil, fmt.Errorf("%w: %w: got %d, want %d",
			generation.ErrInvalidResponse, ErrCountMismatch, len(entries), len(names))
	}

	createdAt := c.clock.Now()
	items := make([]domain.Item, 0, len(entries))
	for i, entry := range entries {
		item := domain.NewItem(req.Section, i, createdAt)
		item.Name = entry.Name
		item.Description = entry.Description
		item.UprightMeaning = entry.UprightMeaning
		item.ReversedMeaning = entry.ReversedMeaning
		item.VisualInstruction = entry.VisualInstruction
		if strings.TrimSpace(item.VisualInstruction) == "" {
			item.VisualInstruction = strings.TrimSpace(item.Name + ". " + item.Description)
		}
		items = append(items, item)
	}

	c.logger.DebugContext(ctx, "metadata entries received",
		"run_id", runID.String(),
		"section", req.Section,
		"sub_requests", len(requests),
		"entries", len(entries))
	return items, nil
}

// runImageStage produces every item's image, one pacing interval apart. It
// returns an error only when ctx ends the run early.
func (c *Controller) runImageStage(
	ctx context.Context,
	req Request,
	items []domain.Item,
	reporter *progress.Reporter,
	log *slog.Logger,
) error {
	seq := pacing.New(c.clock, c.config.ImagePacing, items)

	for i, item := range seq.All(ctx) {
		inProgress := item.WithStatus(domain.ItemStatusImageInProgress, c.clock.Now())
		c.publishItem(ctx, inProgress, reporter.Snapshot())

		ref, cause := c.produceImage(ctx, req.Section, inProgress.ID, inProgress.VisualInstruction, req.Style, req.Reference)
		if ctx.Err() != nil {
			c.publishItem(ctx, item.WithStatus(domain.ItemStatusNeedsImage, c.clock.Now()), reporter.Snapshot())
			return ctx.Err()
		}

		updated := inProgress.WithImage(ref, c.clock.Now())
		if cause != nil {
			log.WarnContext(ctx, "item image failed, using fallback",
				"item_id", item.ID,
				"position", i,
				"error", cause)
		}

		snap, err := reporter.Advance()
		if err != nil {
			log.ErrorContext(ctx, "progress not advanced", "item_id", item.ID, "error", err)
		}
		c.publishItem(ctx, updated, snap)
		c.emitProgress(ctx, req.Section, snap)
	}

	return seq.Err()
}

// produceImage runs one image call under the retry policy. It never fails: a
// fatal failure or exhausted retries yield the fallback marker, and the cause is
// returned for logging.
func (c *Controller) produceImage(
	ctx context.Context,
	section domain.SectionName,
	itemID string,
	instruction string,
	style string,
	reference *domain.ImageRef,
) (*domain.ImageRef, error) {
	var cause error
	ref, err := retry.ExecuteOrFallback(ctx, c.retrierFor(section, itemID),
		func(ctx context.Context) (*domain.ImageRef, error) {
			return c.executor.Image(ctx, instruction, style, reference)
		},
		c.classify,
		func(err error) *domain.ImageRef {
			cause = err
			return domain.FallbackImage()
		})
	if err != nil {
		return domain.FallbackImage(), err
	}
	return ref, cause
}

// retrierFor builds a retrier whose events are attributed to a section and item.
func (c *Controller) retrierFor(section domain.SectionName, itemID string) *retry.Retrier {
	return retry.New(c.config.Retry,
		retry.WithClock(c.clock),
		retry.WithLogger(c.logger.With("section", section, "item_id", itemID)),
		retry.WithObserver(func(ctx context.Context, e retry.Event) {
			eventType := events.TypeRetryScheduled
			if e.Exhausted {
				eventType = events.TypeRetryExhausted
			}
			event := events.New(eventType, section, c.clock.Now())
			event.RemainingRetries = e.RemainingRetries
			event.NextDelay = e.NextDelay
			if e.Err != nil {
				event.Error = e.Err.Error()
			}
			if itemID != "" {
				if item, err := c.deck.FindItem(itemID); err == nil {
					event.Item = &item
				}
			}
			c.emit(ctx, event)
		}))
}

// publishItem replaces the item in the deck and announces it.
func (c *Controller) publishItem(ctx context.Context, item domain.Item, snap progress.Snapshot) {
	version, err := c.deck.ReplaceItem(item)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to publish item",
			"item_id", item.ID,
			"status", item.Status,
			"error", err)
		return
	}

	event := events.New(events.TypeItemUpdated, item.Section, c.clock.Now())
	published := item.Clone()
	event.Item = &published
	event.DeckVersion = version
	event.Progress = snap
	c.emit(ctx, event)
}

func (c *Controller) emitSection(ctx context.Context, section domain.SectionName, items []domain.Item, version uint64, snap progress.Snapshot) {
	event := events.New(events.TypeSectionPublished, section, c.clock.Now())
	event.Items = domain.Section{Name: section, Items: items}.Clone().Items
	event.DeckVersion = version
	event.Progress = snap
	c.emit(ctx, event)
}

func (c *Controller) emitStage(ctx context.Context, section domain.SectionName, snap progress.Snapshot) {
	event := events.New(events.TypeStageChanged, section, c.clock.Now())
	event.Progress = snap
	c.emit(ctx, event)
}

func (c *Controller) emitProgress(ctx context.Context, section domain.SectionName, snap progress.Snapshot) {
	event := events.New(events.TypeProgress, section, c.clock.Now())
	event.Progress = snap
	c.emit(ctx, event)
}

func (c *Controller) emitFinished(ctx context.Context, section domain.SectionName, snap progress.Snapshot) {
	event := events.New(events.TypeRunFinished, section, c.clock.Now())
	event.Progress = snap
	event.Error = snap.Error
	c.emit(ctx, event)
}

// emit publishes an event. Observer failures are logged and never affect the run.
func (c *Controller) emit(ctx context.Context, event *events.Event) {
	if err := c.emitter.EmitEvent(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "progress observer failed",
			"event_type", event.Type,
			"error", err)
	}
}
