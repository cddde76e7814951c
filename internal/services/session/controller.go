package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// SessionIDLength is the length of the random part of session ids
const SessionIDLength = 12

// View is a session with its seated players resolved for display
type View struct {
	Session *model.Session
	Player1 *model.Player
	Player2 *model.Player
}

// Controller manages session creation, joining and lookup
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new session Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// Create opens a new session with the creator in seat one and an empty pool
func (c *Controller) Create(ctx context.Context, creator model.PlayerID) (*model.Session, error) {
	id := model.SessionID("s_" + c.random.String(SessionIDLength, random.IDAlphabet))
	session := model.NewSession(id, creator, c.clock.Now())

	if err := c.storage.CreateSession(ctx, session, model.NewDraftPool(id)); err != nil {
		c.logger.Error("failed to create session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(creator)),
	)
	return session, nil
}

// Join seats the player as player 2 and opens the draft
func (c *Controller) Join(ctx context.Context, id model.SessionID, player model.PlayerID) (*model.Session, error) {
	session, err := c.storage.UpdateSession(ctx, id, func(s *model.Session) error {
		if err := s.Join(player); err != nil {
			return err
		}
		s.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player joined session",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(player)),
	)
	return session, nil
}

// Get retrieves a session by id
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// GetView retrieves a session along with its players
func (c *Controller) GetView(ctx context.Context, id model.SessionID) (*View, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &View{Session: session}
	if view.Player1, err = c.lookupPlayer(ctx, session.Player1); err != nil {
		return nil, err
	}
	if view.Player2, err = c.lookupPlayer(ctx, session.Player2); err != nil {
		return nil, err
	}
	return view, nil
}

func (c *Controller) lookupPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if id == "" {
		return nil, nil
	}
	player, err := c.storage.GetPlayer(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		// Expired guest records still leave the seat meaningful
		return &model.Player{ID: id}, nil
	}
	return player, err
}

// ListOpen returns sessions waiting for a second player, newest first
func (c *Controller) ListOpen(ctx context.Context) ([]*model.Session, error) {
	return c.storage.ListSessionsByStatus(ctx, model.StatusWaiting)
}

// ListMine returns the player's unfinished sessions, newest first
func (c *Controller) ListMine(ctx context.Context, player model.PlayerID) ([]*model.Session, error) {
	sessions, err := c.storage.ListSessionsForPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Status != model.StatusFinished {
			result = append(result, s)
		}
	}
	return result, nil
}

// Role returns "player1" or "player2" for a participant and "" otherwise
func (c *Controller) Role(ctx context.Context, id model.SessionID, player model.PlayerID) (string, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return "", err
	}
	return session.Role(player), nil
}
