package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/vibedraft/internal/api/middleware"
	"github.com/mcoot/vibedraft/internal/api/response"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/sse"
)

// DevHandler handles development-only endpoints for playing against the bot
type DevHandler struct {
	botService  *bot.Service
	broadcaster *sse.Broadcaster
}

// NewDevHandler creates a new dev handler
func NewDevHandler(botService *bot.Service, broadcaster *sse.Broadcaster) *DevHandler {
	return &DevHandler{
		botService:  botService,
		broadcaster: broadcaster,
	}
}

// CreateTestSession handles POST /api/v1/dev/sessions
func (h *DevHandler) CreateTestSession(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	sess, err := h.botService.CreateTestSession(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}

// BotPick handles POST /api/v1/dev/sessions/{id}/bot-pick
func (h *DevHandler) BotPick(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	result, err := h.botService.Pick(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.BotPickResponse{Picked: result.Picked(), Reason: string(result.Reason)}
	if result.Picked() {
		pool := response.DraftPoolFromModel(result.Outcome.Pool)
		resp.Word = result.Outcome.Picked
		resp.Pool = &pool
		if h.broadcaster != nil {
			h.broadcaster.WordPicked(id, result.BotID, result.Outcome.PickResult, result.Outcome.Pool)
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

// SkipToPlay handles POST /api/v1/dev/sessions/{id}/skip-to-play
func (h *DevHandler) SkipToPlay(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	sess, err := h.botService.SkipToPlay(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.WorldGenerated(sess)
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}
