package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/imaging"
	"github.com/mcoot/vibedraft/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockGenerator *generator.Canned
	MemoryStorage *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	canned := generator.NewCanned()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	imageCfg := imaging.DefaultConfig()
	imageCfg.InitialInterval = time.Millisecond
	imageCfg.MaxInterval = time.Millisecond

	app := newWithDependencies(store, mockClock, mockRandom, canned, auth.DefaultConfig(), imageCfg, logger)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockGenerator: canned,
		MemoryStorage: store,
	}
}
