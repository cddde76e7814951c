package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/vibedraft/internal/api/middleware"
	"github.com/mcoot/vibedraft/internal/api/request"
	"github.com/mcoot/vibedraft/internal/api/response"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/generation"
	"github.com/mcoot/vibedraft/internal/sse"
)

// DraftHandler handles the word draft endpoints
type DraftHandler struct {
	drafts      *draft.Controller
	generation  *generation.Service
	botService  *bot.Service
	broadcaster *sse.Broadcaster
	logger      *slog.Logger
}

// NewDraftHandler creates a new draft handler. botService and broadcaster may be nil.
func NewDraftHandler(
	drafts *draft.Controller,
	generationService *generation.Service,
	botService *bot.Service,
	broadcaster *sse.Broadcaster,
	logger *slog.Logger,
) *DraftHandler {
	return &DraftHandler{
		drafts:      drafts,
		generation:  generationService,
		botService:  botService,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "draft-handler")),
	}
}

// Get handles GET /api/v1/sessions/{id}/draft
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	pool, err := h.drafts.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DraftPoolFromModel(pool))
}

// Submit handles POST /api/v1/sessions/{id}/draft/words
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.SubmitWordsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.drafts.Submit(r.Context(), id, player.ID, req.Words)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.WordsSubmitted(id, player.ID, out.Accepted, out.Pool)
	}

	response.JSON(w, http.StatusOK, response.SubmitWordsResponse{
		Accepted: out.Accepted,
		Pool:     response.DraftPoolFromModel(out.Pool),
	})
}

// Start handles POST /api/v1/sessions/{id}/draft/start
func (h *DraftHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	pool, err := h.drafts.StartPicking(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.PickingStarted(id, pool)
	}

	response.JSON(w, http.StatusOK, response.DraftPoolFromModel(pool))
}

// Pick handles POST /api/v1/sessions/{id}/draft/pick. The pick that
// completes the draft also generates the world, and the bot gets to answer
// with its own picks.
func (h *DraftHandler) Pick(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.PickRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.drafts.Pick(r.Context(), id, player.ID, req.Word)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.WordPicked(id, player.ID, out.PickResult, out.Pool)
	}

	resp := response.PickResponse{
		Picked:              out.Picked,
		Complete:            out.Complete,
		Remaining:           out.Remaining,
		GenerationTriggered: out.GenerationTriggered,
	}
	sess, pool := out.Session, out.Pool
	triggered := out.GenerationTriggered

	if !out.Complete {
		actions := h.processBotActions(r.Context(), id)
		resp.BotActions = response.BotActionsFromModel(actions)
		for _, a := range actions {
			if a.Outcome != nil {
				sess, pool = a.Outcome.Session, a.Outcome.Pool
			}
			triggered = triggered || a.GenerationTriggered
		}
	}

	if triggered {
		generated, err := h.generation.GenerateWorld(r.Context(), id, player.ID, nil)
		if err != nil {
			h.logger.Warn("world generation after final pick failed",
				slog.String("session_id", string(id)),
				slog.String("error", err.Error()),
			)
			resp.GenerationError = err.Error()
			if h.broadcaster != nil {
				h.broadcaster.GenerationFailed(id, err)
			}
		} else {
			sess = generated
			if h.broadcaster != nil {
				h.broadcaster.WorldGenerated(generated)
			}
		}
	}

	resp.Session = response.SessionFromModel(sess)
	resp.Pool = response.DraftPoolFromModel(pool)
	response.JSON(w, http.StatusOK, resp)
}

// processBotActions runs bot picks and broadcasts each of them
func (h *DraftHandler) processBotActions(ctx context.Context, id model.SessionID) []bot.BotAction {
	if h.botService == nil {
		return nil
	}

	actions, err := h.botService.ProcessBotActions(ctx, id)
	if err != nil {
		h.logger.Warn("bot actions failed",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	if h.broadcaster != nil {
		for _, a := range actions {
			if a.Type == bot.ActionPick && a.Outcome != nil {
				h.broadcaster.WordPicked(id, a.PlayerID, a.Outcome.PickResult, a.Outcome.Pool)
			}
		}
	}
	return actions
}
