package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/vibedraft/internal/api/handler"
	"github.com/mcoot/vibedraft/internal/api/middleware"
	sharedmw "github.com/mcoot/vibedraft/internal/middleware"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/services/cards"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/generation"
	"github.com/mcoot/vibedraft/internal/services/identity"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	IdentityService   *identity.Service
	SessionController *session.Controller
	DraftController   *draft.Controller
	GenerationService *generation.Service
	CardService       *cards.Service
	BotService        *bot.Service
	HubManager        *sse.HubManager
	Broadcaster       *sse.Broadcaster
	// DevMode mounts the /dev routes for playing against the bot
	DevMode bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.IdentityService)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.HubManager, cfg.Broadcaster)
	draftHandler := handler.NewDraftHandler(cfg.DraftController, cfg.GenerationService, cfg.BotService, cfg.Broadcaster, cfg.Logger)
	generationHandler := handler.NewGenerationHandler(cfg.GenerationService, cfg.CardService, cfg.Broadcaster)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService, cfg.IdentityService)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Everything below requires a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/players/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Session routes
	protected.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/sessions", sessionHandler.ListOpen).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/mine", sessionHandler.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}/join", sessionHandler.Join).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/role", sessionHandler.Role).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}/events", sessionHandler.Events).Methods(http.MethodGet)

	// Draft routes
	protected.HandleFunc("/sessions/{id}/draft", draftHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}/draft/words", draftHandler.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/draft/start", draftHandler.Start).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/draft/pick", draftHandler.Pick).Methods(http.MethodPost)

	// Generation and card routes
	protected.HandleFunc("/sessions/{id}/world", generationHandler.GenerateWorld).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/cards", generationHandler.GenerateCard).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/hand", generationHandler.Hand).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}/field", generationHandler.Field).Methods(http.MethodGet)
	protected.HandleFunc("/cards/{id}", generationHandler.GetCard).Methods(http.MethodGet)
	protected.HandleFunc("/images/{id}", generationHandler.GetImage).Methods(http.MethodGet)

	if cfg.DevMode && cfg.BotService != nil {
		devHandler := handler.NewDevHandler(cfg.BotService, cfg.Broadcaster)
		protected.HandleFunc("/dev/sessions", devHandler.CreateTestSession).Methods(http.MethodPost)
		protected.HandleFunc("/dev/sessions/{id}/bot-pick", devHandler.BotPick).Methods(http.MethodPost)
		protected.HandleFunc("/dev/sessions/{id}/skip-to-play", devHandler.SkipToPlay).Methods(http.MethodPost)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
