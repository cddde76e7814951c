package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/api"
	"github.com/mcoot/vibedraft/internal/config"
	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/services/cards"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/generation"
	"github.com/mcoot/vibedraft/internal/services/identity"
	"github.com/mcoot/vibedraft/internal/services/imaging"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/sse"
	"github.com/mcoot/vibedraft/internal/storage"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	redisstorage "github.com/mcoot/vibedraft/internal/storage/redis"
	"github.com/mcoot/vibedraft/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Generator generator.Client

	// Services
	AuthService       *auth.Service
	IdentityService   *identity.Service
	SessionController *session.Controller
	DraftController   *draft.Controller
	GenerationService *generation.Service
	CardService       *cards.Service
	BotService        *bot.Service
	ImageQueue        *imaging.Queue
	HubManager        *sse.HubManager
	Broadcaster       *sse.Broadcaster

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Generator overrides the content generator (optional)
	// If nil, Gemini is used when GeminiConfig has an API key and canned
	// content otherwise
	Generator generator.Client
	// GeminiConfig configures the Gemini client
	GeminiConfig generator.GeminiConfig
	// ImageConfig controls the image task queue (optional)
	ImageConfig imaging.Config
}

// ConfigFromEnv converts the server's environment configuration
func ConfigFromEnv(env config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = env.RedisURL

	imageCfg := imaging.DefaultConfig()
	imageCfg.Workers = env.ImageWorkers
	imageCfg.QueueSize = env.ImageQueueSize
	imageCfg.MaxTries = env.ImageMaxTries

	return Config{
		AuthConfig:  auth.Config{TokenDuration: env.TokenDuration},
		Logger:      logger,
		StorageType: env.Storage,
		RedisConfig: &redisCfg,
		SQLitePath:  env.SQLitePath,
		GeminiConfig: generator.GeminiConfig{
			APIKey:     env.GeminiAPIKey,
			BaseURL:    env.GeminiBaseURL,
			TextModel:  env.GeminiTextModel,
			ImageModel: env.GeminiImageModel,
			Timeout:    env.GenerationTimeout,
		},
		ImageConfig: imageCfg,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	case config.StorageSQLite:
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
		closers = append(closers, sqliteStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}

	gen := cfg.Generator
	if gen == nil {
		if cfg.GeminiConfig.APIKey != "" {
			gen = generator.NewGemini(cfg.GeminiConfig, logger)
		} else {
			logger.Warn("no Gemini API key configured, generating canned content")
			gen = generator.NewCanned()
		}
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), random.New(), gen, authCfg, cfg.ImageConfig, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gen generator.Client,
	authCfg auth.Config,
	imageCfg imaging.Config,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, clk, logger)

	imageQueue := imaging.New(gen, store, clk, imageCfg, logger)
	imageQueue.OnImageReady(broadcaster.ImageReady)

	identityService := identity.New(store, clk, rnd, logger)
	sessionController := session.NewController(store, clk, rnd, logger)
	draftController := draft.NewController(store, clk, rnd, logger)
	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(rnd),
	}

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Generator:         gen,
		AuthService:       auth.New(store, clk, authCfg, logger),
		IdentityService:   identityService,
		SessionController: sessionController,
		DraftController:   draftController,
		GenerationService: generation.New(store, gen, imageQueue, clk, logger),
		CardService:       cards.New(store, logger),
		BotService:        bot.NewService(store, identityService, sessionController, draftController, strategies, clk, logger),
		ImageQueue:        imageQueue,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		logger:            logger,
	}
}

// RouterConfig returns the API router configuration for the app
func (a *App) RouterConfig(devMode bool) api.RouterConfig {
	return api.RouterConfig{
		Logger:            a.logger,
		AuthService:       a.AuthService,
		IdentityService:   a.IdentityService,
		SessionController: a.SessionController,
		DraftController:   a.DraftController,
		GenerationService: a.GenerationService,
		CardService:       a.CardService,
		BotService:        a.BotService,
		HubManager:        a.HubManager,
		Broadcaster:       a.Broadcaster,
		DevMode:           devMode,
	}
}

// Close closes event streams and storage connections
func (a *App) Close() error {
	a.HubManager.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
