package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/vibedraft/internal/api/middleware"
	"github.com/mcoot/vibedraft/internal/api/request"
	"github.com/mcoot/vibedraft/internal/api/response"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/cards"
	"github.com/mcoot/vibedraft/internal/services/generation"
	"github.com/mcoot/vibedraft/internal/sse"
)

// GenerationHandler handles world and card generation and card queries
type GenerationHandler struct {
	generation  *generation.Service
	cards       *cards.Service
	broadcaster *sse.Broadcaster
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generationService *generation.Service, cardService *cards.Service, broadcaster *sse.Broadcaster) *GenerationHandler {
	return &GenerationHandler{
		generation:  generationService,
		cards:       cardService,
		broadcaster: broadcaster,
	}
}

// GenerateWorld handles POST /api/v1/sessions/{id}/world
func (h *GenerationHandler) GenerateWorld(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.GenerateWorldRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.generation.GenerateWorld(r.Context(), id, player.ID, &generation.WorldInput{
		Player1Picks: req.Player1Picks,
		Player2Picks: req.Player2Picks,
	})
	if err != nil {
		if h.broadcaster != nil && model.KindOf(err) == model.KindGeneration {
			h.broadcaster.GenerationFailed(id, err)
		}
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.WorldGenerated(sess)
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// GenerateCard handles POST /api/v1/sessions/{id}/cards
func (h *GenerationHandler) GenerateCard(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.GenerateCardRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	card, err := h.generation.GenerateCard(r.Context(), id, player.ID, generation.CardInput{
		WorldDescription: req.WorldDescription,
		Themes:           req.Themes,
		ResourceTypes:    req.ResourceTypes,
		FieldContext:     req.FieldContext,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.CardGenerated(card)
	}

	response.JSON(w, http.StatusCreated, response.CardFromModel(card))
}

// Hand handles GET /api/v1/sessions/{id}/hand
func (h *GenerationHandler) Hand(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	hand, err := h.cards.GetHand(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CardsFromModel(hand))
}

// Field handles GET /api/v1/sessions/{id}/field
func (h *GenerationHandler) Field(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	field, err := h.cards.GetField(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CardsFromModel(field))
}

// GetCard handles GET /api/v1/cards/{id}
func (h *GenerationHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := model.CardID(mux.Vars(r)["id"])

	card, err := h.cards.GetCard(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CardFromModel(card))
}

// GetImage handles GET /api/v1/images/{id}
func (h *GenerationHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := model.ImageID(mux.Vars(r)["id"])

	img, err := h.cards.GetImage(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Image(w, img.ContentType, img.Data)
}
