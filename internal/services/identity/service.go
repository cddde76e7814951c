package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

const (
	// PlayerIDLength is the length of the random part of player ids
	PlayerIDLength = 12
	// DefaultDisplayName is used when the identity provider supplies no name
	DefaultDisplayName = "Player"
)

// Service maps identity-provider subjects to players
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new identity service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// Resolve returns the player for the identity, creating it on first use.
// Concurrent first calls for the same subject all resolve to one player.
func (s *Service) Resolve(ctx context.Context, id model.Identity) (*model.Player, error) {
	if id.Subject == "" {
		return nil, model.ErrUnauthenticated
	}

	player, err := s.storage.GetPlayerBySubject(ctx, id.Subject)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = DefaultDisplayName
	}
	candidate := &model.Player{
		ID:          model.PlayerID("p_" + s.random.String(PlayerIDLength, random.IDAlphabet)),
		AuthSubject: id.Subject,
		DisplayName: name,
		Email:       id.Email,
		CreatedAt:   s.clock.Now(),
	}
	player, err = s.storage.EnsurePlayer(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if player.ID == candidate.ID {
		s.logger.Info("player created",
			slog.String("player_id", string(player.ID)),
			slog.String("subject", id.Subject),
		)
	}
	return player, nil
}

// Lookup returns the player for the identity without creating one
func (s *Service) Lookup(ctx context.Context, id model.Identity) (*model.Player, error) {
	if id.Subject == "" {
		return nil, model.ErrUnauthenticated
	}
	return s.storage.GetPlayerBySubject(ctx, id.Subject)
}

// EnsureBot returns the bot player, creating it on first use
func (s *Service) EnsureBot(ctx context.Context, strategy string) (*model.Player, error) {
	return s.storage.EnsurePlayer(ctx, &model.Player{
		ID:          model.PlayerID("p_bot_" + s.random.String(PlayerIDLength, random.IDAlphabet)),
		AuthSubject: model.BotSubject,
		DisplayName: model.BotDisplayName,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	})
}
