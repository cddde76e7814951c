package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/vibedraft/internal/api/middleware"
	"github.com/mcoot/vibedraft/internal/api/response"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/sse"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions    *session.Controller
	hubManager  *sse.HubManager
	broadcaster *sse.Broadcaster
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller, hubManager *sse.HubManager, broadcaster *sse.Broadcaster) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		hubManager:  hubManager,
		broadcaster: broadcaster,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	sess, err := h.sessions.Create(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}

// ListOpen handles GET /api/v1/sessions
func (h *SessionHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListOpen(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionsFromModel(sessions))
}

// ListMine handles GET /api/v1/sessions/mine
func (h *SessionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	sessions, err := h.sessions.ListMine(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionsFromModel(sessions))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	view, err := h.sessions.GetView(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromView(view))
}

// Join handles POST /api/v1/sessions/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	sess, err := h.sessions.Join(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.PlayerJoined(sess, player)
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// Role handles GET /api/v1/sessions/{id}/role
func (h *SessionHandler) Role(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	role, err := h.sessions.Role(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Role{Role: role, IsParticipant: role != ""})
}

// Events handles GET /api/v1/sessions/{id}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	if h.hubManager == nil {
		WriteError(w, NewInvalidRequestError("event streaming is not enabled"))
		return
	}
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(id), player.ID)
}
