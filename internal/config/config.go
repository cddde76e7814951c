// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Host string `env:"VIBEDRAFT_ADDR"`
	Port int    `env:"VIBEDRAFT_PORT" envDefault:"8080"`

	Storage    string `env:"VIBEDRAFT_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"VIBEDRAFT_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"VIBEDRAFT_SQLITE_PATH" envDefault:"vibedraft.db"`

	GeminiAPIKey      string        `env:"VIBEDRAFT_GEMINI_API_KEY"`
	GeminiTextModel   string        `env:"VIBEDRAFT_GEMINI_TEXT_MODEL"`
	GeminiImageModel  string        `env:"VIBEDRAFT_GEMINI_IMAGE_MODEL"`
	GeminiBaseURL     string        `env:"VIBEDRAFT_GEMINI_BASE_URL"`
	GenerationTimeout time.Duration `env:"VIBEDRAFT_GENERATION_TIMEOUT" envDefault:"60s"`

	ImageWorkers   int  `env:"VIBEDRAFT_IMAGE_WORKERS" envDefault:"2"`
	ImageQueueSize int  `env:"VIBEDRAFT_IMAGE_QUEUE_SIZE" envDefault:"64"`
	ImageMaxTries  uint `env:"VIBEDRAFT_IMAGE_MAX_TRIES" envDefault:"3"`

	TokenDuration time.Duration `env:"VIBEDRAFT_TOKEN_DURATION" envDefault:"24h"`

	DevMode      bool   `env:"VIBEDRAFT_DEV_MODE"`
	LogLevel     string `env:"VIBEDRAFT_LOG_LEVEL" envDefault:"info"`
	OTelEndpoint string `env:"VIBEDRAFT_OTEL_ENDPOINT"`
}

// Load parses the configuration from environment variables and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("invalid VIBEDRAFT_STORAGE %q: must be memory, redis or sqlite", c.Storage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid VIBEDRAFT_PORT %d", c.Port)
	}
	if c.ImageWorkers < 1 {
		return fmt.Errorf("VIBEDRAFT_IMAGE_WORKERS must be at least 1")
	}
	if c.ImageMaxTries < 1 {
		return fmt.Errorf("VIBEDRAFT_IMAGE_MAX_TRIES must be at least 1")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level
func (c Config) Level() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel maps a level name to a slog level
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid VIBEDRAFT_LOG_LEVEL %q", name)
	}
	return level, nil
}
