package generation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/imaging"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type recordingQueue struct {
	mu    sync.Mutex
	tasks []imaging.Task
}

func (q *recordingQueue) Enqueue(task imaging.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return true
}

type ServiceSuite struct {
	suite.Suite
	storage   *memory.Storage
	generator *generator.Canned
	queue     *recordingQueue
	sessions  *session.Controller
	drafts    *draft.Controller
	service   *Service
	ctx       context.Context
	sessionID model.SessionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.generator = generator.NewCanned()
	s.queue = &recordingQueue{}
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	random := mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.sessions = session.NewController(s.storage, clock, random, logger)
	s.drafts = draft.NewController(s.storage, clock, random, logger)
	s.service = New(s.storage, s.generator, s.queue, clock, logger)
	s.ctx = context.Background()

	created, err := s.sessions.Create(s.ctx, "p1")
	s.Require().NoError(err)
	_, err = s.sessions.Join(s.ctx, created.ID, "p2")
	s.Require().NoError(err)
	s.sessionID = created.ID
}

// completeDraft runs a four word draft to completion
func (s *ServiceSuite) completeDraft() {
	_, err := s.drafts.Submit(s.ctx, s.sessionID, "p1", []string{"fire", "ruins"})
	s.Require().NoError(err)
	_, err = s.drafts.Submit(s.ctx, s.sessionID, "p2", []string{"ice", "caves"})
	s.Require().NoError(err)
	_, err = s.drafts.StartPicking(s.ctx, s.sessionID)
	s.Require().NoError(err)

	for i := range 4 {
		player := model.PlayerID("p1")
		if i%2 == 1 {
			player = "p2"
		}
		_, err := s.drafts.PickWith(s.ctx, s.sessionID, player, func(pool *model.DraftPool) (string, error) {
			return pool.Words[0], nil
		})
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) toPlay() {
	s.completeDraft()
	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", nil)
	s.Require().NoError(err)
}

// World tests

func (s *ServiceSuite) TestGenerateWorldMovesToPlay() {
	s.completeDraft()
	pool, _ := s.drafts.Get(s.ctx, s.sessionID)
	var seen generator.WorldRequest
	s.generator.WorldFn = func(_ context.Context, req generator.WorldRequest) (*model.World, error) {
		seen = req
		return generator.CannedWorld(req), nil
	}

	session, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p2", nil)
	s.Require().NoError(err)

	s.Equal(model.PhasePlay, session.Phase)
	s.Equal(model.TurnDraw, session.TurnPhase)
	s.Equal(model.PlayerID("p1"), session.CurrentTurn)
	s.Require().NotNil(session.World)
	s.Len(session.World.ResourceTypes, 3)
	s.Equal(pool.Player1Picks, seen.Player1Picks)
	s.Equal(pool.Player2Picks, seen.Player2Picks)
}

func (s *ServiceSuite) TestGenerateWorldUsesSuppliedPicks() {
	s.completeDraft()
	var seen generator.WorldRequest
	s.generator.WorldFn = func(_ context.Context, req generator.WorldRequest) (*model.World, error) {
		seen = req
		return generator.CannedWorld(req), nil
	}

	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", &WorldInput{
		Player1Picks: []string{"storm"},
		Player2Picks: []string{"sea"},
	})
	s.Require().NoError(err)

	s.Equal([]string{"storm"}, seen.Player1Picks)
	s.Equal([]string{"sea"}, seen.Player2Picks)
}

func (s *ServiceSuite) TestGenerateWorldBeforeDraftCompletes() {
	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", nil)

	s.ErrorIs(err, model.ErrWrongPhase)
	world, _, _ := s.generator.Calls()
	s.Zero(world)
}

func (s *ServiceSuite) TestGenerateWorldByStranger() {
	s.completeDraft()

	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p9", nil)

	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ServiceSuite) TestGenerateWorldTwiceFails() {
	s.toPlay()

	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", nil)

	s.ErrorIs(err, model.ErrAlreadyGenerated)
	world, _, _ := s.generator.Calls()
	s.Equal(1, world)
}

func (s *ServiceSuite) TestGenerateWorldFailureLeavesGeneratingAndAllowsRetry() {
	s.completeDraft()
	s.generator.WorldFn = func(context.Context, generator.WorldRequest) (*model.World, error) {
		return nil, generator.ErrUnparsableResponse
	}

	_, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", nil)
	s.ErrorIs(err, model.ErrGeneration)
	s.Equal(model.KindGeneration, model.KindOf(err))

	stored, _ := s.storage.GetSession(s.ctx, s.sessionID)
	s.Equal(model.PhaseGenerating, stored.Phase)
	s.Nil(stored.World)

	s.generator.WorldFn = nil
	session, err := s.service.GenerateWorld(s.ctx, s.sessionID, "p1", nil)
	s.Require().NoError(err)
	s.Equal(model.PhasePlay, session.Phase)
}

func (s *ServiceSuite) TestConcurrentTriggersCallGeneratorOnce() {
	s.completeDraft()
	release := make(chan struct{})
	var calls atomic.Int32
	s.generator.WorldFn = func(_ context.Context, req generator.WorldRequest) (*model.World, error) {
		calls.Add(1)
		<-release
		return generator.CannedWorld(req), nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, player := range []model.PlayerID{"p1", "p2", "p1", "p2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.GenerateWorld(s.ctx, s.sessionID, player, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case model.KindOf(err) == model.KindConflict:
				conflicts++
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal(int32(1), calls.Load())
	s.Equal(4, successes+conflicts)
	s.GreaterOrEqual(successes, 1)
	stored, _ := s.storage.GetSession(s.ctx, s.sessionID)
	s.Equal(model.PhasePlay, stored.Phase)
}

// Card tests

func (s *ServiceSuite) TestGenerateCardSavesToHandAndQueuesImage() {
	s.toPlay()

	card, err := s.service.GenerateCard(s.ctx, s.sessionID, "p1", CardInput{})
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p1"), card.OwnerID)
	s.Equal(model.LocationHand, card.Location)
	s.False(card.Tapped)
	s.NotEmpty(card.ID)

	stored, err := s.storage.GetCard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Equal(card.Name, stored.Name)

	s.Require().Len(s.queue.tasks, 1)
	s.Equal(card.ID, s.queue.tasks[0].CardID)
	s.Equal(card.ImagePrompt, s.queue.tasks[0].Prompt)
}

func (s *ServiceSuite) TestGenerateCardUsesRequesterPicksAsThemes() {
	s.toPlay()
	pool, _ := s.drafts.Get(s.ctx, s.sessionID)
	session, _ := s.storage.GetSession(s.ctx, s.sessionID)
	var seen generator.CardRequest
	s.generator.CardFn = func(_ context.Context, req generator.CardRequest) (*generator.CardDraft, error) {
		seen = req
		return &generator.CardDraft{Name: "Bolt", Type: model.CardInstant, Abilities: []model.Ability{}}, nil
	}

	_, err := s.service.GenerateCard(s.ctx, s.sessionID, "p2", CardInput{FieldContext: "two creatures"})
	s.Require().NoError(err)

	s.Equal(pool.Player2Picks, seen.Themes)
	s.Equal(session.World.Description, seen.WorldDescription)
	s.Equal(session.World.ResourceTypes, seen.ResourceTypes)
	s.Equal("two creatures", seen.FieldContext)
	s.Empty(s.queue.tasks, "cards without an image prompt get no art")
}

func (s *ServiceSuite) TestGenerateCardBeforePlay() {
	s.completeDraft()

	_, err := s.service.GenerateCard(s.ctx, s.sessionID, "p1", CardInput{})

	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ServiceSuite) TestGenerateCardByStranger() {
	s.toPlay()

	_, err := s.service.GenerateCard(s.ctx, s.sessionID, "p9", CardInput{})

	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ServiceSuite) TestGenerateCardFailureSavesNothing() {
	s.toPlay()
	s.generator.CardFn = func(context.Context, generator.CardRequest) (*generator.CardDraft, error) {
		return nil, generator.ErrUnparsableResponse
	}

	_, err := s.service.GenerateCard(s.ctx, s.sessionID, "p1", CardInput{})

	s.ErrorIs(err, model.ErrGeneration)
	cards, _ := s.storage.ListCards(s.ctx, model.CardFilter{SessionID: s.sessionID})
	s.Empty(cards)
}

func (s *ServiceSuite) TestGenerateCardRejectsInvalidCard() {
	s.toPlay()
	s.generator.CardFn = func(context.Context, generator.CardRequest) (*generator.CardDraft, error) {
		return &generator.CardDraft{Name: "Statless", Type: model.CardCreature}, nil
	}

	_, err := s.service.GenerateCard(s.ctx, s.sessionID, "p1", CardInput{})

	s.ErrorIs(err, model.ErrGeneration)
	s.ErrorIs(err, model.ErrInvalidCard)
}
