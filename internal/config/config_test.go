package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 2, cfg.ImageWorkers)
	assert.Equal(t, uint(3), cfg.ImageMaxTries)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIBEDRAFT_PORT", "9090")
	t.Setenv("VIBEDRAFT_STORAGE", "sqlite")
	t.Setenv("VIBEDRAFT_SQLITE_PATH", "/tmp/draft.db")
	t.Setenv("VIBEDRAFT_GEMINI_API_KEY", "key")
	t.Setenv("VIBEDRAFT_GENERATION_TIMEOUT", "90s")
	t.Setenv("VIBEDRAFT_DEV_MODE", "true")
	t.Setenv("VIBEDRAFT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/tmp/draft.db", cfg.SQLitePath)
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("VIBEDRAFT_STORAGE", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "VIBEDRAFT_STORAGE")
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("VIBEDRAFT_GENERATION_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("VIBEDRAFT_LOG_LEVEL", "loud")

	_, err := Load()
	assert.ErrorContains(t, err, "VIBEDRAFT_LOG_LEVEL")
}
