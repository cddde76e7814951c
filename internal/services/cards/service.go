package cards

import (
	"context"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// Service answers card queries for session participants
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new cards Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "cards")),
	}
}

// GetHand returns the player's cards in hand, oldest first
func (s *Service) GetHand(ctx context.Context, sessionID model.SessionID, player model.PlayerID) ([]*model.Card, error) {
	if err := s.requireParticipant(ctx, sessionID, player); err != nil {
		return nil, err
	}
	return s.list(ctx, model.CardFilter{SessionID: sessionID, OwnerID: player, Location: model.LocationHand})
}

// GetField returns every card on the field of the session, for both players
func (s *Service) GetField(ctx context.Context, sessionID model.SessionID, player model.PlayerID) ([]*model.Card, error) {
	if err := s.requireParticipant(ctx, sessionID, player); err != nil {
		return nil, err
	}
	return s.list(ctx, model.CardFilter{SessionID: sessionID, Location: model.LocationField})
}

// GetCard returns a single card
func (s *Service) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	return s.storage.GetCard(ctx, id)
}

// GetImage returns stored card art
func (s *Service) GetImage(ctx context.Context, id model.ImageID) (*model.Image, error) {
	return s.storage.GetImage(ctx, id)
}

// list relies on every backend returning cards oldest first
func (s *Service) list(ctx context.Context, filter model.CardFilter) ([]*model.Card, error) {
	return s.storage.ListCards(ctx, filter)
}

func (s *Service) requireParticipant(ctx context.Context, sessionID model.SessionID, player model.PlayerID) error {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsParticipant(player) {
		s.logger.Warn("card view denied to non-participant",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(player)),
		)
		return model.ErrNotParticipant
	}
	return nil
}
