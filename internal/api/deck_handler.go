package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckforge/internal/api/shared"
	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/orchestrator"
	"github.com/phrazzld/deckforge/internal/platform/logger"
	"github.com/phrazzld/deckforge/internal/progress"
)

// Orchestrator runs section generation and item regeneration.
type Orchestrator interface {
	GenerateSection(ctx context.Context, req orchestrator.Request) (*orchestrator.Outcome, error)
	RegenerateImage(ctx context.Context, req orchestrator.RegenerateRequest) (*domain.Item, error)
}

var _ Orchestrator = (*orchestrator.Controller)(nil)

// DeckReader gives read access to the current deck.
type DeckReader interface {
	Snapshot() domain.Deck
	FindItem(id string) (domain.Item, error)
}

var _ DeckReader = (*domain.DeckState)(nil)

// DeckHandler handles deck generation HTTP requests.
type DeckHandler struct {
	orchestrator Orchestrator
	deck         DeckReader
	registry     *progress.Registry
	runs         *RunGuard
	logger       *slog.Logger

	// runCtx bounds background section runs; cancelling it stops them.
	runCtx context.Context
	wg     sync.WaitGroup
}

// NewDeckHandler creates a DeckHandler. Background runs started by Generate
// live until runCtx is cancelled.
func NewDeckHandler(
	runCtx context.Context,
	orch Orchestrator,
	deck DeckReader,
	registry *progress.Registry,
	logger *slog.Logger,
) *DeckHandler {
	if orch == nil || deck == nil || registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("orchestrator, deck and registry cannot be nil for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		orchestrator: orch,
		deck:         deck,
		registry:     registry,
		runs:         NewRunGuard(),
		logger:       logger.With(slog.String("component", "deck_handler")),
		runCtx:       runCtx,
	}
}

// Routes registers the handler's endpoints on r.
func (h *DeckHandler) Routes(r chi.Router) {
	r.Get("/deck", h.GetDeck)
	r.Post("/sections/{section}/generate", h.GenerateSection)
	r.Get("/sections/{section}/progress", h.GetProgress)
	r.Post("/items/{id}/regenerate", h.RegenerateImage)
	r.Get("/items/{id}/image", h.GetItemImage)
}

// Wait blocks until every background run has returned.
func (h *DeckHandler) Wait() {
	h.wg.Wait()
}

// GenerateSection handles POST /api/sections/{section}/generate requests.
// The run continues in the background; the response is 202 Accepted.
func (h *DeckHandler) GenerateSection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context())

	section, err := domain.ParseSectionName(chi.URLParam(r, "section"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	runReq := orchestrator.Request{
		Section:   section,
		Theme:     req.Theme,
		Style:     req.Style,
		Reference: req.Reference.toDomain(),
	}
	if err := runReq.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if !h.runs.TryAcquire(section) {
		HandleAPIError(w, r, fmt.Errorf("%w: %s", ErrRunActive, section), "")
		return
	}

	h.wg.Add(1)
	go h.run(runReq)

	log.InfoContext(r.Context(), "section generation accepted", "section", section)
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{
		Section:     section,
		Status:      "accepted",
		ProgressURL: fmt.Sprintf("/api/sections/%s/progress", section),
	})
}

func (h *DeckHandler) run(req orchestrator.Request) {
	defer h.wg.Done()
	defer h.runs.Release(req.Section)

	outcome, err := h.orchestrator.GenerateSection(h.runCtx, req)
	if err != nil {
		h.logger.ErrorContext(h.runCtx, "section generation failed",
			"section", req.Section,
			"error", err)
		return
	}
	h.logger.InfoContext(h.runCtx, "section generation finished",
		"section", req.Section,
		"run_id", outcome.RunID,
		"ready", outcome.Ready,
		"failed", outcome.Failed)
}

// GetProgress handles GET /api/sections/{section}/progress requests.
func (h *DeckHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	section, err := domain.ParseSectionName(chi.URLParam(r, "section"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	snap, ok := h.registry.Get(section)
	if !ok {
		HandleAPIError(w, r, fmt.Errorf("%w: %s", ErrNoRun, section), "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(snap, h.runs.Active(section)))
}

// RegenerateImage handles POST /api/items/{id}/regenerate requests. The
// request body is optional. An image failure is reported through the item
// status, not the response code.
func (h *DeckHandler) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context())
	itemID := chi.URLParam(r, "id")

	var req RegenerateRequest
	if err := shared.DecodeOptionalJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	current, err := h.deck.FindItem(itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !h.runs.TryAcquire(current.Section) {
		HandleAPIError(w, r, fmt.Errorf("%w: %s", ErrRunActive, current.Section), "")
		return
	}
	defer h.runs.Release(current.Section)

	item, err := h.orchestrator.RegenerateImage(r.Context(), orchestrator.RegenerateRequest{
		ItemID:      itemID,
		Instruction: req.Instruction,
		Style:       req.Style,
		Reference:   req.Reference.toDomain(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.InfoContext(r.Context(), "item image regenerated",
		"item_id", item.ID,
		"status", item.Status)
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(*item))
}

// GetDeck handles GET /api/deck requests.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(h.deck.Snapshot()))
}

// GetItemImage handles GET /api/items/{id}/image requests by writing the raw
// image payload.
func (h *DeckHandler) GetItemImage(w http.ResponseWriter, r *http.Request) {
	item, err := h.deck.FindItem(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if item.Image == nil || item.Image.IsFallback() || len(item.Image.Data) == 0 {
		HandleAPIError(w, r, fmt.Errorf("%w: %s", ErrImageUnavailable, item.ID), "")
		return
	}

	w.Header().Set("Content-Type", item.Image.MIMEType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(item.Image.Data); err != nil {
		logger.FromContextOrDefault(r.Context()).Error("failed to write image response",
			"item_id", item.ID,
			"error", err)
	}
}
