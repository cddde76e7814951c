package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/draft"
	"github.com/mcoot/vibedraft/internal/services/identity"
	"github.com/mcoot/vibedraft/internal/services/session"
	"github.com/mcoot/vibedraft/internal/storage"
)

// MaxBotIterations is a safety limit for the ProcessBotActions loop
const MaxBotIterations = 1000

// PickReason explains why a bot did or did not pick
type PickReason string

const (
	ReasonPicked        PickReason = "picked"
	ReasonNotBotsTurn   PickReason = "not bot's turn"
	ReasonNoWords       PickReason = "no words left"
	ReasonNotInSession  PickReason = "bot is not in this session"
	ReasonDraftComplete PickReason = "draft complete"
)

// PickResult describes the outcome of asking the bot to pick
type PickResult struct {
	BotID   model.PlayerID
	Reason  PickReason
	Outcome *draft.PickOutcome // set only when the bot picked
}

// Picked reports whether the bot claimed a word
func (r *PickResult) Picked() bool {
	return r.Outcome != nil
}

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionPick          BotActionType = "pick"
	ActionDraftComplete BotActionType = "draft_complete"
)

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Word     string
	// GenerationTriggered is set on the pick that completed the draft
	GenerationTriggered bool
	Outcome             *draft.PickOutcome
}

// DevWorld is the world a session receives when skipped straight to play
var DevWorld = model.World{
	Name: "The Crystal Shadowlands",
	Description: "A realm where ancient crystalline ruins pierce through shadowy mists. " +
		"The land pulses with forgotten magic, where spectral beasts roam between dimensions. " +
		"Towering spires of living crystal hum with arcane energy, while the shadows themselves seem to breathe and watch.",
	ResourceTypes: []string{"Crystal Essence", "Shadow Mana", "Ancient Power", "Spectral Energy"},
}

// Service manages the bot participant
type Service struct {
	storage    storage.Storage
	identity   *identity.Service
	sessions   *session.Controller
	drafts     *draft.Controller
	strategies map[string]Strategy
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	identityService *identity.Service,
	sessions *session.Controller,
	drafts *draft.Controller,
	strategies map[string]Strategy,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    store,
		identity:   identityService,
		sessions:   sessions,
		drafts:     drafts,
		strategies: strategies,
		clock:      clk,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// EnsureBot returns the bot player, creating it on first use
func (s *Service) EnsureBot(ctx context.Context) (*model.Player, error) {
	return s.identity.EnsureBot(ctx, model.BotStrategyRandom)
}

// CreateTestSession opens a session against the bot. The bot takes seat two
// immediately, so the session starts in the draft with the bot's words
// already in the pool.
func (s *Service) CreateTestSession(ctx context.Context, creator model.PlayerID) (*model.Session, error) {
	bot, err := s.EnsureBot(ctx)
	if err != nil {
		return nil, err
	}
	if bot.ID == creator {
		return nil, model.ErrSelfJoin
	}

	created, err := s.sessions.Create(ctx, creator)
	if err != nil {
		return nil, err
	}
	joined, err := s.sessions.Join(ctx, created.ID, bot.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.drafts.Submit(ctx, created.ID, bot.ID, model.BotWords); err != nil {
		return nil, err
	}

	s.logger.Info("test session created",
		slog.String("session_id", string(created.ID)),
		slog.String("player_id", string(creator)),
		slog.String("bot_id", string(bot.ID)),
	)
	return joined, nil
}

// Pick makes the bot claim a word if it is the bot's turn
func (s *Service) Pick(ctx context.Context, sessionID model.SessionID) (*PickResult, error) {
	bot, err := s.EnsureBot(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsParticipant(bot.ID) {
		return &PickResult{BotID: bot.ID, Reason: ReasonNotInSession}, nil
	}

	pool, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case pool.State() == model.DraftComplete:
		return &PickResult{BotID: bot.ID, Reason: ReasonDraftComplete}, nil
	case pool.CurrentPicker != bot.ID:
		return &PickResult{BotID: bot.ID, Reason: ReasonNotBotsTurn}, nil
	case len(pool.Words) == 0:
		return &PickResult{BotID: bot.ID, Reason: ReasonNoWords}, nil
	}

	strategy := s.strategyForPlayer(bot)
	if strategy == nil {
		return nil, fmt.Errorf("no bot strategy registered for %q", bot.BotStrategy)
	}
	outcome, err := s.drafts.PickWith(ctx, sessionID, bot.ID, strategy.ChooseWord)
	if err != nil {
		return nil, err
	}
	return &PickResult{BotID: bot.ID, Reason: ReasonPicked, Outcome: outcome}, nil
}

// ProcessBotActions lets the bot pick until it is a human's turn or the
// draft is complete. It returns all actions taken so handlers can broadcast
// updates and trigger world generation.
func (s *Service) ProcessBotActions(ctx context.Context, sessionID model.SessionID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		result, err := s.Pick(ctx, sessionID)
		if err != nil {
			return actions, err
		}
		if !result.Picked() {
			break
		}

		outcome := result.Outcome
		actions = append(actions, BotAction{
			Type:                ActionPick,
			PlayerID:            result.BotID,
			Word:                outcome.Picked,
			GenerationTriggered: outcome.GenerationTriggered,
			Outcome:             outcome,
		})
		if outcome.Complete {
			actions = append(actions, BotAction{Type: ActionDraftComplete, PlayerID: result.BotID})
			break
		}
	}

	return actions, nil
}

// SkipToPlay moves a session in the draft or awaiting its world straight into
// play with DevWorld. The draft is closed with whatever picks exist.
func (s *Service) SkipToPlay(ctx context.Context, sessionID model.SessionID, requester model.PlayerID) (*model.Session, error) {
	sess, _, err := s.storage.UpdateDraft(ctx, sessionID, func(sess *model.Session, pool *model.DraftPool) error {
		if !sess.IsParticipant(requester) {
			return model.ErrNotParticipant
		}
		if sess.Phase == model.PhaseDraft {
			if len(pool.Player1Picks) == 0 && len(pool.Player2Picks) == 0 {
				pool.Player1Picks = []string{"crystal caves", "ancient ruins"}
				pool.Player2Picks = []string{"shadow beasts"}
				for _, word := range slices.Concat(pool.Player1Picks, pool.Player2Picks) {
					if i := slices.Index(pool.Words, word); i >= 0 {
						pool.Words = slices.Delete(pool.Words, i, i+1)
					}
				}
			}
			pool.CurrentPicker = ""
			pool.PicksStarted = true
			if err := sess.SetPhase(model.PhaseGenerating); err != nil {
				return err
			}
		}
		if err := sess.ApplyWorld(DevWorld); err != nil {
			return err
		}
		sess.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session skipped to play",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(requester)),
	)
	return sess, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// the random strategy if the player's strategy is not found
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	return s.strategies[model.BotStrategyRandom]
}
