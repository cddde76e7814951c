package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/identity"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *memory.Storage
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom

	sessions   *session.Controller
	drafts     *draft.Controller
	botService *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	identityService := identity.New(s.store, s.mockClock, s.mockRandom, logger)
	s.sessions = session.NewController(s.store, s.mockClock, s.mockRandom, logger)
	s.drafts = draft.NewController(s.store, s.mockClock, s.mockRandom, logger)
	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(s.mockRandom),
	}
	s.botService = bot.NewService(s.store, identityService, s.sessions, s.drafts, strategies, s.mockClock, logger)
}

// startBotDraft creates a test session, adds the human's words and starts picking
func (s *ServiceSuite) startBotDraft(words ...string) (*model.Session, *model.Player) {
	sess, err := s.botService.CreateTestSession(s.ctx, "p1")
	s.Require().NoError(err)
	_, err = s.drafts.Submit(s.ctx, sess.ID, "p1", words)
	s.Require().NoError(err)
	_, err = s.drafts.StartPicking(s.ctx, sess.ID)
	s.Require().NoError(err)

	botPlayer, err := s.botService.EnsureBot(s.ctx)
	s.Require().NoError(err)
	return sess, botPlayer
}

func (s *ServiceSuite) humanPick(sessionID model.SessionID) {
	_, err := s.drafts.PickWith(s.ctx, sessionID, "p1", func(pool *model.DraftPool) (string, error) {
		return pool.Words[0], nil
	})
	s.Require().NoError(err)
}

// EnsureBot tests

func (s *ServiceSuite) TestEnsureBotIsStable() {
	first, err := s.botService.EnsureBot(s.ctx)
	s.Require().NoError(err)
	second, err := s.botService.EnsureBot(s.ctx)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.True(first.IsBot)
	s.Equal(model.BotStrategyRandom, first.BotStrategy)
	s.Equal(model.BotSubject, first.AuthSubject)
}

// CreateTestSession tests

func (s *ServiceSuite) TestCreateTestSession() {
	sess, err := s.botService.CreateTestSession(s.ctx, "p1")
	s.Require().NoError(err)

	botPlayer, _ := s.botService.EnsureBot(s.ctx)
	s.Equal(model.PlayerID("p1"), sess.Player1)
	s.Equal(botPlayer.ID, sess.Player2)
	s.Equal(model.PhaseDraft, sess.Phase)
	s.Equal(model.StatusActive, sess.Status)

	pool, err := s.drafts.Get(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.BotWords, pool.Words)
	s.False(pool.PicksStarted)
}

func (s *ServiceSuite) TestCreateTestSessionAsBotFails() {
	botPlayer, _ := s.botService.EnsureBot(s.ctx)

	_, err := s.botService.CreateTestSession(s.ctx, botPlayer.ID)
	s.ErrorIs(err, model.ErrSelfJoin)
}

// Pick tests

func (s *ServiceSuite) TestPick_NotBotsTurn() {
	sess, _ := s.startBotDraft("fire")

	result, err := s.botService.Pick(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.False(result.Picked())
	s.Equal(bot.ReasonNotBotsTurn, result.Reason)
}

func (s *ServiceSuite) TestPick_BotsTurn() {
	sess, botPlayer := s.startBotDraft("fire")
	s.humanPick(sess.ID)
	before, _ := s.drafts.Get(s.ctx, sess.ID)

	result, err := s.botService.Pick(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.True(result.Picked())
	s.Equal(bot.ReasonPicked, result.Reason)
	s.Equal(before.Words[0], result.Outcome.Picked)
	s.Equal([]string{before.Words[0]}, result.Outcome.Pool.Player2Picks)
	s.Equal(model.PlayerID("p1"), result.Outcome.Pool.CurrentPicker)
	s.Equal(botPlayer.ID, result.BotID)
}

func (s *ServiceSuite) TestPick_BotNotInSession() {
	sess, _ := s.sessions.Create(s.ctx, "p1")
	_, _ = s.sessions.Join(s.ctx, sess.ID, "p2")

	result, err := s.botService.Pick(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Equal(bot.ReasonNotInSession, result.Reason)
}

func (s *ServiceSuite) TestPick_DraftComplete() {
	sess, _ := s.startBotDraft("fire")
	for range 2 {
		s.humanPick(sess.ID)
		_, err := s.botService.ProcessBotActions(s.ctx, sess.ID)
		s.Require().NoError(err)
	}

	result, err := s.botService.Pick(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Equal(bot.ReasonDraftComplete, result.Reason)
}

// ProcessBotActions tests

func (s *ServiceSuite) TestProcessBotActions_StopsAtHumanTurn() {
	sess, botPlayer := s.startBotDraft("fire", "ice")
	s.humanPick(sess.ID)

	actions, err := s.botService.ProcessBotActions(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Require().Len(actions, 1)
	s.Equal(bot.ActionPick, actions[0].Type)
	s.Equal(botPlayer.ID, actions[0].PlayerID)
	s.False(actions[0].GenerationTriggered)

	pool, _ := s.drafts.Get(s.ctx, sess.ID)
	s.Equal(model.PlayerID("p1"), pool.CurrentPicker)
}

func (s *ServiceSuite) TestProcessBotActions_NothingToDo() {
	sess, _ := s.startBotDraft("fire")

	actions, err := s.botService.ProcessBotActions(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActions_CompletesDraft() {
	// Four words: human, bot, human, bot empties the pool
	sess, _ := s.startBotDraft("fire")
	s.humanPick(sess.ID)
	_, err := s.botService.ProcessBotActions(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.humanPick(sess.ID)

	actions, err := s.botService.ProcessBotActions(s.ctx, sess.ID)
	s.Require().NoError(err)

	s.Require().Len(actions, 2)
	s.Equal(bot.ActionPick, actions[0].Type)
	s.True(actions[0].GenerationTriggered)
	s.Equal(bot.ActionDraftComplete, actions[1].Type)

	stored, _ := s.sessions.Get(s.ctx, sess.ID)
	s.Equal(model.PhaseGenerating, stored.Phase)
}

// SkipToPlay tests

func (s *ServiceSuite) TestSkipToPlay_FromDraft() {
	sess, err := s.botService.CreateTestSession(s.ctx, "p1")
	s.Require().NoError(err)

	skipped, err := s.botService.SkipToPlay(s.ctx, sess.ID, "p1")
	s.Require().NoError(err)

	s.Equal(model.PhasePlay, skipped.Phase)
	s.Equal(model.TurnDraw, skipped.TurnPhase)
	s.Equal(model.PlayerID("p1"), skipped.CurrentTurn)
	s.Require().NotNil(skipped.World)
	s.Equal(bot.DevWorld.ResourceTypes, skipped.World.ResourceTypes)

	pool, _ := s.drafts.Get(s.ctx, sess.ID)
	s.Equal(model.DraftComplete, pool.State())
	s.Equal([]string{"crystal caves", "ancient ruins"}, pool.Player1Picks)
	s.Equal([]string{"shadow beasts"}, pool.Player2Picks)
	for _, picked := range append(pool.Player1Picks, pool.Player2Picks...) {
		s.NotContains(pool.Words, picked)
	}
}

func (s *ServiceSuite) TestSkipToPlay_KeepsExistingPicks() {
	sess, _ := s.startBotDraft("fire")
	s.humanPick(sess.ID)
	before, _ := s.drafts.Get(s.ctx, sess.ID)

	_, err := s.botService.SkipToPlay(s.ctx, sess.ID, "p1")
	s.Require().NoError(err)

	pool, _ := s.drafts.Get(s.ctx, sess.ID)
	s.Equal(before.Player1Picks, pool.Player1Picks)
	s.Empty(pool.Player2Picks)
	s.Empty(pool.CurrentPicker)
}

func (s *ServiceSuite) TestSkipToPlay_Waiting() {
	sess, _ := s.sessions.Create(s.ctx, "p1")

	_, err := s.botService.SkipToPlay(s.ctx, sess.ID, "p1")
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ServiceSuite) TestSkipToPlay_AlreadyInPlay() {
	sess, _ := s.botService.CreateTestSession(s.ctx, "p1")
	_, err := s.botService.SkipToPlay(s.ctx, sess.ID, "p1")
	s.Require().NoError(err)

	_, err = s.botService.SkipToPlay(s.ctx, sess.ID, "p1")
	s.ErrorIs(err, model.ErrAlreadyGenerated)
}

func (s *ServiceSuite) TestSkipToPlay_Stranger() {
	sess, _ := s.botService.CreateTestSession(s.ctx, "p1")

	_, err := s.botService.SkipToPlay(s.ctx, sess.ID, "p9")
	s.ErrorIs(err, model.ErrNotParticipant)

	stored, _ := s.sessions.Get(s.ctx, sess.ID)
	s.Equal(model.PhaseDraft, stored.Phase)
}
