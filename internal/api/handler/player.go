package handler

import (
	"net/http"

	"github.com/mcoot/vibedraft/internal/api/middleware"
	"github.com/mcoot/vibedraft/internal/api/request"
	"github.com/mcoot/vibedraft/internal/api/response"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/identity"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService     *auth.Service
	identityService *identity.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, identityService *identity.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:     authService,
		identityService: identityService,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.authService.Guest(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, token)
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.authService.Register(r.Context(), req.Username, req.Password, req.DisplayName, req.Email)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, token)
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, token)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Revoke(middleware.GetToken(r.Context()))
	response.NoContent(w)
}

// respondWithToken resolves the token's player so the caller learns its id straight away
func (h *PlayerHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, token *auth.Token) {
	player, err := h.identityService.Resolve(r.Context(), token.Identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.AuthResponseFromToken(token, player))
}
