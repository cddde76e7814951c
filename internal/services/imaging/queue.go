// Package imaging generates card art in the background, after the card it
// belongs to has already been saved.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
	"github.com/mcoot/vibedraft/internal/telemetry"
)

// Task asks for art for one card
type Task struct {
	ID               string
	CardID           model.CardID
	SessionID        model.SessionID
	Prompt           string
	WorldDescription string
}

// NewTask creates a task with a fresh id
func NewTask(card *model.Card, worldDescription string) Task {
	return Task{
		ID:               uuid.NewString(),
		CardID:           card.ID,
		SessionID:        card.SessionID,
		Prompt:           card.ImagePrompt,
		WorldDescription: worldDescription,
	}
}

// Config controls queue capacity and retry behaviour
type Config struct {
	Workers         int
	QueueSize       int
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig returns the default queue configuration
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		QueueSize:       64,
		MaxTries:        3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// ReadyFunc is called after a card's image has been attached
type ReadyFunc func(card *model.Card)

// Queue is a bounded queue of image tasks drained by worker goroutines
type Queue struct {
	tasks     chan Task
	generator generator.Client
	storage   storage.Storage
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger

	mu      sync.RWMutex
	onReady ReadyFunc
}

// New creates a new Queue. Tasks are only processed once Run is called.
func New(gen generator.Client, storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Queue {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = defaults.MaxTries
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	return &Queue{
		tasks:     make(chan Task, cfg.QueueSize),
		generator: gen,
		storage:   storage,
		clock:     clock,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "imaging")),
	}
}

// OnImageReady registers fn to be called whenever an image is attached
func (q *Queue) OnImageReady(fn ReadyFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onReady = fn
}

// Enqueue adds a task without blocking. It reports false when the queue is
// full and the task was dropped; the card stays valid without art.
func (q *Queue) Enqueue(task Task) bool {
	select {
	case q.tasks <- task:
		q.logger.Debug("image task queued",
			slog.String("task_id", task.ID),
			slog.String("card_id", string(task.CardID)),
		)
		return true
	default:
		q.logger.Warn("image task dropped - queue full",
			slog.String("task_id", task.ID),
			slog.String("card_id", string(task.CardID)),
		)
		return false
	}
}

// Pending returns the number of queued tasks
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// Run processes tasks with the configured number of workers until ctx is done
func (q *Queue) Run(ctx context.Context) error {
	q.logger.Info("image workers started", slog.Int("workers", q.cfg.Workers))

	var wg sync.WaitGroup
	for range q.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-q.tasks:
					// Failures are logged inside process and never reach the card
					_ = q.process(ctx, task)
				}
			}
		}()
	}
	wg.Wait()

	q.logger.Info("image workers stopped", slog.Int("pending", len(q.tasks)))
	return nil
}

// process generates, stores and attaches the image for one task
func (q *Queue) process(ctx context.Context, task Task) (err error) {
	ctx, span := telemetry.Start(ctx, "imaging.process", telemetry.SessionID(string(task.SessionID)))
	defer func() { telemetry.End(span, err) }()

	logger := q.logger.With(
		slog.String("task_id", task.ID),
		slog.String("card_id", string(task.CardID)),
	)

	started := q.clock.Now()
	attempts := 0
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = q.cfg.InitialInterval
	expo.MaxInterval = q.cfg.MaxInterval

	image, err := backoff.Retry(ctx, func() (*generator.Image, error) {
		attempts++
		image, err := q.generator.GenerateImage(ctx, generator.ImageRequest{
			Prompt:           task.Prompt,
			WorldDescription: task.WorldDescription,
		})
		if err != nil {
			logger.Warn("image generation attempt failed",
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		return image, nil
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(q.cfg.MaxTries))
	if err != nil {
		logger.Error("image generation failed", slog.Int("attempts", attempts), slog.String("error", err.Error()))
		return err
	}

	record := &model.Image{
		ID:          model.ImageID(uuid.NewString()),
		CardID:      task.CardID,
		ContentType: image.ContentType,
		Data:        image.Data,
		CreatedAt:   q.clock.Now(),
	}
	if err := q.storage.SaveImage(ctx, record); err != nil {
		logger.Error("failed to save image", slog.String("error", err.Error()))
		return fmt.Errorf("save image: %w", err)
	}

	card, err := q.storage.UpdateCard(ctx, task.CardID, func(c *model.Card) error {
		c.ImageRef = record.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrCardNotFound) {
			logger.Warn("card vanished before image was attached")
		} else {
			logger.Error("failed to attach image", slog.String("error", err.Error()))
		}
		return fmt.Errorf("attach image: %w", err)
	}

	logger.Info("image attached",
		slog.String("image_id", string(record.ID)),
		slog.Int("attempts", attempts),
		slog.Int("bytes", len(record.Data)),
		slog.Duration("elapsed", q.clock.Since(started)),
	)

	q.mu.RLock()
	onReady := q.onReady
	q.mu.RUnlock()
	if onReady != nil {
		onReady(card)
	}
	return nil
}
