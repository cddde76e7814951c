package draft

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	sessions   *session.Controller
	controller *Controller
	ctx        context.Context
	sessionID  model.SessionID
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.sessions = session.NewController(s.storage, s.clock, s.random, logger)
	s.controller = NewController(s.storage, s.clock, s.random, logger)
	s.ctx = context.Background()

	created, err := s.sessions.Create(s.ctx, "p1")
	s.Require().NoError(err)
	_, err = s.sessions.Join(s.ctx, created.ID, "p2")
	s.Require().NoError(err)
	s.sessionID = created.ID
}

func (s *ControllerSuite) submit(player model.PlayerID, words ...string) {
	_, err := s.controller.Submit(s.ctx, s.sessionID, player, words)
	s.Require().NoError(err)
}

// Submit tests

func (s *ControllerSuite) TestSubmitReportsAccepted() {
	out, err := s.controller.Submit(s.ctx, s.sessionID, "p1", []string{"  ", "ok", strings.Repeat("x", 60)})
	s.Require().NoError(err)

	s.Equal(1, out.Accepted)
	s.Equal([]string{"ok"}, out.Pool.Words)
}

func (s *ControllerSuite) TestSubmitInvalidLeavesPoolUnchanged() {
	s.submit("p1", "fire")

	_, err := s.controller.Submit(s.ctx, s.sessionID, "p2", []string{" ", ""})
	s.ErrorIs(err, model.ErrNoValidWords)

	pool, _ := s.controller.Get(s.ctx, s.sessionID)
	s.Equal([]string{"fire"}, pool.Words)
}

func (s *ControllerSuite) TestSubmitBeforeJoinFails() {
	waiting, _ := s.sessions.Create(s.ctx, "p9")

	_, err := s.controller.Submit(s.ctx, waiting.ID, "p9", []string{"ok"})
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ControllerSuite) TestSubmitByStrangerFails() {
	_, err := s.controller.Submit(s.ctx, s.sessionID, "p9", []string{"ok"})
	s.ErrorIs(err, model.ErrNotParticipant)
}

// StartPicking tests

func (s *ControllerSuite) TestStartPickingTooFewWords() {
	s.submit("p1", "a", "b", "c")

	_, err := s.controller.StartPicking(s.ctx, s.sessionID)
	s.ErrorIs(err, model.ErrPoolTooSmall)
}

func (s *ControllerSuite) TestStartPickingShufflesWithRandomSource() {
	s.submit("p1", "a", "b")
	s.submit("p2", "c", "d")
	// Fisher-Yates: i=3 j=3, i=2 j=0, i=1 j=1
	s.random.QueueIntn(3, 0, 1)

	pool, err := s.controller.StartPicking(s.ctx, s.sessionID)
	s.Require().NoError(err)

	s.Equal([]string{"c", "b", "a", "d"}, pool.Words)
	s.Equal(model.PlayerID("p1"), pool.CurrentPicker)
}

// Pick tests

func (s *ControllerSuite) TestPickFullDraft() {
	s.submit("p1", "a", "b")
	s.submit("p2", "c", "d")
	_, err := s.controller.StartPicking(s.ctx, s.sessionID)
	s.Require().NoError(err)

	var last *PickOutcome
	for i := range 4 {
		pool, _ := s.controller.Get(s.ctx, s.sessionID)
		player := model.PlayerID("p1")
		if i%2 == 1 {
			player = "p2"
		}
		last, err = s.controller.Pick(s.ctx, s.sessionID, player, pool.Words[0])
		s.Require().NoError(err)
	}

	s.True(last.Complete)
	s.True(last.GenerationTriggered)
	s.Equal(model.PhaseGenerating, last.Session.Phase)
	s.Len(last.Pool.Player1Picks, 2)
	s.Len(last.Pool.Player2Picks, 2)
}

func (s *ControllerSuite) TestPickOutOfTurn() {
	s.submit("p1", "a", "b", "c", "d")
	_, _ = s.controller.StartPicking(s.ctx, s.sessionID)

	_, err := s.controller.Pick(s.ctx, s.sessionID, "p2", "a")

	s.ErrorIs(err, model.ErrNotYourTurn)
	pool, _ := s.controller.Get(s.ctx, s.sessionID)
	s.Len(pool.Words, 4)
}

func (s *ControllerSuite) TestPickWithChoosesInsideUpdate() {
	s.submit("p1", "a", "b", "c", "d")
	_, _ = s.controller.StartPicking(s.ctx, s.sessionID)

	var seen []string
	out, err := s.controller.PickWith(s.ctx, s.sessionID, "p1", func(pool *model.DraftPool) (string, error) {
		seen = append([]string{}, pool.Words...)
		return pool.Words[len(pool.Words)-1], nil
	})
	s.Require().NoError(err)

	s.Len(seen, 4)
	s.Equal(seen[3], out.Picked)
}

func (s *ControllerSuite) TestPickWithChooserErrorAborts() {
	s.submit("p1", "a", "b", "c", "d")
	_, _ = s.controller.StartPicking(s.ctx, s.sessionID)
	boom := errors.New("no choice")

	_, err := s.controller.PickWith(s.ctx, s.sessionID, "p1", func(*model.DraftPool) (string, error) {
		return "", boom
	})

	s.ErrorIs(err, boom)
	pool, _ := s.controller.Get(s.ctx, s.sessionID)
	s.Equal(model.PlayerID("p1"), pool.CurrentPicker)
}

func (s *ControllerSuite) TestConcurrentDuplicatePicksCommitOnce() {
	s.submit("p1", "a", "b", "c", "d")
	_, _ = s.controller.StartPicking(s.ctx, s.sessionID)
	pool, _ := s.controller.Get(s.ctx, s.sessionID)
	word := pool.Words[0]

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		turnErrs  int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.Pick(s.ctx, s.sessionID, "p1", word)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case model.KindOf(err) == model.KindTurn:
				turnErrs++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(9, turnErrs)
	pool, _ = s.controller.Get(s.ctx, s.sessionID)
	s.Equal([]string{word}, pool.Player1Picks)
}
