package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

// Create tests

func (s *ControllerSuite) TestCreateSucceeds() {
	s.random.QueueString("abcdef123456")

	session, err := s.controller.Create(s.ctx, "p1")
	s.Require().NoError(err)

	s.Equal(model.SessionID("s_abcdef123456"), session.ID)
	s.Equal(model.PlayerID("p1"), session.Player1)
	s.Empty(session.Player2)
	s.Equal(model.PhaseWaiting, session.Phase)
	s.Equal(model.StatusWaiting, session.Status)
	s.Equal(100, session.Player1Life)
}

func (s *ControllerSuite) TestCreateAlsoCreatesEmptyPool() {
	session, err := s.controller.Create(s.ctx, "p1")
	s.Require().NoError(err)

	pool, err := s.storage.GetDraftPool(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Empty(pool.Words)
	s.Equal(model.DraftEmpty, pool.State())
}

// Join tests

func (s *ControllerSuite) TestJoinOpensDraft() {
	session, _ := s.controller.Create(s.ctx, "p1")

	joined, err := s.controller.Join(s.ctx, session.ID, "p2")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p2"), joined.Player2)
	s.Equal(model.PhaseDraft, joined.Phase)
	s.Equal(model.StatusActive, joined.Status)
	s.Equal(100, joined.Player2Life)
}

func (s *ControllerSuite) TestJoinFullSessionFails() {
	session, _ := s.controller.Create(s.ctx, "p1")
	_, err := s.controller.Join(s.ctx, session.ID, "p2")
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, session.ID, "p3")
	s.ErrorIs(err, model.ErrSessionFull)

	stored, _ := s.controller.Get(s.ctx, session.ID)
	s.Equal(model.PlayerID("p2"), stored.Player2)
}

func (s *ControllerSuite) TestJoinOwnSessionFails() {
	session, _ := s.controller.Create(s.ctx, "p1")

	_, err := s.controller.Join(s.ctx, session.ID, "p1")
	s.ErrorIs(err, model.ErrSelfJoin)
}

func (s *ControllerSuite) TestJoinMissingSessionFails() {
	_, err := s.controller.Join(s.ctx, "nope", "p2")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestConcurrentJoinsSeatOnePlayer() {
	session, _ := s.controller.Create(s.ctx, "p1")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, p := range []model.PlayerID{"p2", "p3", "p4", "p5"} {
		wg.Add(1)
		go func(p model.PlayerID) {
			defer wg.Done()
			if _, err := s.controller.Join(s.ctx, session.ID, p); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	s.Equal(1, successes)
}

// Query tests

func (s *ControllerSuite) TestGetViewIncludesPlayers() {
	_, _ = s.storage.EnsurePlayer(s.ctx, &model.Player{ID: "p1", AuthSubject: "user:alice", DisplayName: "Alice"})
	_, _ = s.storage.EnsurePlayer(s.ctx, &model.Player{ID: "p2", AuthSubject: "user:bob", DisplayName: "Bob"})
	session, _ := s.controller.Create(s.ctx, "p1")
	_, _ = s.controller.Join(s.ctx, session.ID, "p2")

	view, err := s.controller.GetView(s.ctx, session.ID)
	s.Require().NoError(err)

	s.Equal("Alice", view.Player1.DisplayName)
	s.Equal("Bob", view.Player2.DisplayName)
}

func (s *ControllerSuite) TestGetViewWithEmptySeat() {
	session, _ := s.controller.Create(s.ctx, "p1")

	view, err := s.controller.GetView(s.ctx, session.ID)
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p1"), view.Player1.ID)
	s.Nil(view.Player2)
}

func (s *ControllerSuite) TestListOpenOnlyShowsWaiting() {
	open, _ := s.controller.Create(s.ctx, "p1")
	s.clock.Advance(time.Minute)
	full, _ := s.controller.Create(s.ctx, "p3")
	_, _ = s.controller.Join(s.ctx, full.ID, "p4")

	sessions, err := s.controller.ListOpen(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(sessions, 1)
	s.Equal(open.ID, sessions[0].ID)
}

func (s *ControllerSuite) TestListMineSkipsFinished() {
	first, _ := s.controller.Create(s.ctx, "p1")
	s.clock.Advance(time.Minute)
	second, _ := s.controller.Create(s.ctx, "p1")
	_, err := s.storage.UpdateSession(s.ctx, first.ID, func(session *model.Session) error {
		session.Status = model.StatusFinished
		return nil
	})
	s.Require().NoError(err)

	mine, err := s.controller.ListMine(s.ctx, "p1")
	s.Require().NoError(err)

	s.Require().Len(mine, 1)
	s.Equal(second.ID, mine[0].ID)
}

func (s *ControllerSuite) TestRole() {
	session, _ := s.controller.Create(s.ctx, "p1")
	_, _ = s.controller.Join(s.ctx, session.ID, "p2")

	for player, want := range map[model.PlayerID]string{"p1": "player1", "p2": "player2", "p3": ""} {
		role, err := s.controller.Role(s.ctx, session.ID, player)
		s.Require().NoError(err)
		s.Equal(want, role)
	}
}
