package imaging

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type QueueSuite struct {
	suite.Suite
	storage   *memory.Storage
	generator *generator.Canned
	queue     *Queue
	ctx       context.Context
	card      *model.Card
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueSuite))
}

func (s *QueueSuite) SetupTest() {
	s.storage = memory.New()
	s.generator = generator.NewCanned()
	s.queue = New(s.generator, s.storage, mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), Config{
		Workers:         1,
		QueueSize:       2,
		MaxTries:        3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, testutil.NopLogger())
	s.ctx = context.Background()

	s.card = &model.Card{
		ID:          "c1",
		SessionID:   "s1",
		OwnerID:     "p1",
		Name:        "Ember Drake",
		Type:        model.CardSorcery,
		Abilities:   []model.Ability{},
		ImagePrompt: "a drake",
		Location:    model.LocationHand,
	}
	s.Require().NoError(s.storage.SaveCard(s.ctx, s.card))
}

func (s *QueueSuite) TestProcessAttachesImage() {
	var ready *model.Card
	s.queue.OnImageReady(func(card *model.Card) { ready = card })

	err := s.queue.process(s.ctx, NewTask(s.card, "ash"))
	s.Require().NoError(err)

	card, _ := s.storage.GetCard(s.ctx, "c1")
	s.NotEmpty(card.ImageRef)
	image, err := s.storage.GetImage(s.ctx, card.ImageRef)
	s.Require().NoError(err)
	s.Equal("image/png", image.ContentType)
	s.Equal(model.CardID("c1"), image.CardID)
	s.Require().NotNil(ready)
	s.Equal(card.ImageRef, ready.ImageRef)
}

func (s *QueueSuite) TestProcessRetriesTransientFailures() {
	var calls atomic.Int32
	s.generator.ImageFn = func(context.Context, generator.ImageRequest) (*generator.Image, error) {
		if calls.Add(1) < 3 {
			return nil, model.ErrGeneration
		}
		return &generator.Image{ContentType: "image/webp", Data: []byte{1}}, nil
	}

	err := s.queue.process(s.ctx, NewTask(s.card, ""))
	s.Require().NoError(err)

	s.Equal(int32(3), calls.Load())
	card, _ := s.storage.GetCard(s.ctx, "c1")
	s.NotEmpty(card.ImageRef)
}

func (s *QueueSuite) TestProcessGivesUpAndLeavesCardIntact() {
	s.generator.ImageFn = func(context.Context, generator.ImageRequest) (*generator.Image, error) {
		return nil, model.ErrGeneration
	}

	err := s.queue.process(s.ctx, NewTask(s.card, ""))
	s.ErrorIs(err, model.ErrGeneration)

	_, _, images := s.generator.Calls()
	s.Equal(3, images)
	card, err := s.storage.GetCard(s.ctx, "c1")
	s.Require().NoError(err)
	s.Empty(card.ImageRef)
	s.Equal("Ember Drake", card.Name)
}

func (s *QueueSuite) TestProcessMissingCard() {
	task := NewTask(&model.Card{ID: "missing", ImagePrompt: "x"}, "")

	err := s.queue.process(s.ctx, task)

	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *QueueSuite) TestEnqueueDropsWhenFull() {
	s.True(s.queue.Enqueue(NewTask(s.card, "")))
	s.True(s.queue.Enqueue(NewTask(s.card, "")))

	s.False(s.queue.Enqueue(NewTask(s.card, "")))
	s.Equal(2, s.queue.Pending())
}

func (s *QueueSuite) TestEnqueueLogsDroppedTask() {
	logger, logs := testutil.CaptureLogger()
	queue := New(s.generator, s.storage, mocks.NewMockClock(time.Now()), Config{Workers: 1, QueueSize: 1}, logger)

	s.True(queue.Enqueue(NewTask(s.card, "")))
	s.False(queue.Enqueue(NewTask(s.card, "")))

	s.True(logs.Contains("image task dropped - queue full"))
	s.True(logs.Contains(`"card_id":"c1"`))
}

func (s *QueueSuite) TestRunDrainsQueue() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.queue.Run(ctx) }()

	s.True(s.queue.Enqueue(NewTask(s.card, "ash")))

	s.Eventually(func() bool {
		card, err := s.storage.GetCard(s.ctx, "c1")
		return err == nil && card.ImageRef != ""
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("workers did not stop")
	}
}

func (s *QueueSuite) TestNewTaskCopiesCard() {
	task := NewTask(s.card, "world")

	s.NotEmpty(task.ID)
	s.Equal(s.card.ID, task.CardID)
	s.Equal(s.card.SessionID, task.SessionID)
	s.Equal("a drake", task.Prompt)
	s.Equal("world", task.WorldDescription)
	s.NotEqual(task.ID, NewTask(s.card, "world").ID)
}
