package draft

import (
	"context"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
	"github.com/mcoot/vibedraft/internal/telemetry"
)

// ChooseFunc picks a word from the pool as it stands inside the update.
// It is used for picks whose word is not known in advance, such as a bot's.
type ChooseFunc func(pool *model.DraftPool) (string, error)

// PickOutcome is the result of a committed pick with the state it produced
type PickOutcome struct {
	model.PickResult
	Session *model.Session
	Pool    *model.DraftPool
}

// SubmitOutcome is the result of a committed word submission
type SubmitOutcome struct {
	Accepted int
	Pool     *model.DraftPool
}

// Controller applies draft transitions atomically against storage
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new draft Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "draft")),
	}
}

// Get returns the current draft pool of a session
func (c *Controller) Get(ctx context.Context, sessionID model.SessionID) (*model.DraftPool, error) {
	return c.storage.GetDraftPool(ctx, sessionID)
}

// Submit adds a participant's words to the pool
func (c *Controller) Submit(ctx context.Context, sessionID model.SessionID, player model.PlayerID, words []string) (result *SubmitOutcome, err error) {
	ctx, span := telemetry.Start(ctx, "draft.submit", telemetry.SessionID(string(sessionID)), telemetry.PlayerID(string(player)))
	defer func() { telemetry.End(span, err) }()

	var accepted int
	_, pool, err := c.storage.UpdateDraft(ctx, sessionID, func(s *model.Session, p *model.DraftPool) error {
		n, err := model.SubmitWords(s, p, player, words)
		if err != nil {
			return err
		}
		accepted = n
		s.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("words submitted",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(player)),
		slog.Int("accepted", accepted),
		slog.Int("pool_size", len(pool.Words)),
	)
	return &SubmitOutcome{Accepted: accepted, Pool: pool}, nil
}

// StartPicking shuffles the pool and gives player 1 the first pick.
// Either participant, or anyone holding the session id, may start picking.
func (c *Controller) StartPicking(ctx context.Context, sessionID model.SessionID) (pool *model.DraftPool, err error) {
	ctx, span := telemetry.Start(ctx, "draft.start", telemetry.SessionID(string(sessionID)))
	defer func() { telemetry.End(span, err) }()

	_, pool, err = c.storage.UpdateDraft(ctx, sessionID, func(s *model.Session, p *model.DraftPool) error {
		if err := model.StartPicking(s, p, func(words []string) { random.Shuffle(c.random, words) }); err != nil {
			return err
		}
		s.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("picking started",
		slog.String("session_id", string(sessionID)),
		slog.Int("pool_size", len(pool.Words)),
	)
	return pool, nil
}

// Pick claims a specific word for the player
func (c *Controller) Pick(ctx context.Context, sessionID model.SessionID, player model.PlayerID, word string) (*PickOutcome, error) {
	return c.PickWith(ctx, sessionID, player, func(*model.DraftPool) (string, error) { return word, nil })
}

// PickWith claims the word chosen by choose for the player. The choice is
// made against the same pool state the pick is applied to.
func (c *Controller) PickWith(ctx context.Context, sessionID model.SessionID, player model.PlayerID, choose ChooseFunc) (outcome *PickOutcome, err error) {
	ctx, span := telemetry.Start(ctx, "draft.pick", telemetry.SessionID(string(sessionID)), telemetry.PlayerID(string(player)))
	defer func() { telemetry.End(span, err) }()

	var result model.PickResult
	session, pool, err := c.storage.UpdateDraft(ctx, sessionID, func(s *model.Session, p *model.DraftPool) error {
		word, err := choose(p)
		if err != nil {
			return err
		}
		result, err = model.PickWord(s, p, player, word)
		if err != nil {
			return err
		}
		s.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("word picked",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(player)),
		slog.String("word", result.Picked),
		slog.Int("remaining", result.Remaining),
	)
	if result.GenerationTriggered {
		c.logger.Info("draft complete",
			slog.String("session_id", string(sessionID)),
			slog.Int("player1_picks", len(pool.Player1Picks)),
			slog.Int("player2_picks", len(pool.Player2Picks)),
		)
	}
	return &PickOutcome{PickResult: result, Session: session, Pool: pool}, nil
}
