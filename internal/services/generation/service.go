// Package generation turns a finished draft into a world, and a world into
// cards, through the content generator.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/generator"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/imaging"
	"github.com/mcoot/vibedraft/internal/storage"
	"github.com/mcoot/vibedraft/internal/telemetry"
)

// ImageQueue accepts deferred image tasks
type ImageQueue interface {
	Enqueue(task imaging.Task) bool
}

// WorldInput optionally overrides the picks a world is generated from
type WorldInput struct {
	Player1Picks []string
	Player2Picks []string
}

// CardInput optionally overrides the context a card is generated from.
// Empty fields are filled from the session and its draft pool.
type CardInput struct {
	WorldDescription string
	Themes           []string
	ResourceTypes    []string
	FieldContext     string
}

// Service triggers world and card generation
type Service struct {
	storage   storage.Storage
	generator generator.Client
	images    ImageQueue
	clock     clock.Clock
	logger    *slog.Logger

	worlds singleflight.Group
}

// New creates a new generation Service. images may be nil, in which case
// cards are created without art.
func New(storage storage.Storage, gen generator.Client, images ImageQueue, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		generator: gen,
		images:    images,
		clock:     clock,
		logger:    logger.With(slog.String("component", "generation")),
	}
}

// GenerateWorld generates the world for a session whose draft is complete and
// moves it into play. Concurrent calls for the same session share one
// generator request; a call arriving after the world is set fails with
// ErrAlreadyGenerated. On generator failure the session stays generating and
// the call may be retried.
func (s *Service) GenerateWorld(ctx context.Context, sessionID model.SessionID, requester model.PlayerID, input *WorldInput) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(requester) {
		return nil, model.ErrNotParticipant
	}
	if err := session.AwaitingWorld(); err != nil {
		return nil, err
	}

	// The shared call must not be cut short by whichever caller started it
	shared := context.WithoutCancel(ctx)
	v, err, joined := s.worlds.Do(string(sessionID), func() (any, error) {
		return s.generateWorld(shared, sessionID, input)
	})
	if joined {
		s.logger.Debug("world generation shared",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(requester)),
		)
	}
	if err != nil {
		return nil, err
	}
	return v.(*model.Session).Clone(), nil
}

func (s *Service) generateWorld(ctx context.Context, sessionID model.SessionID, input *WorldInput) (session *model.Session, err error) {
	ctx, span := telemetry.Start(ctx, "generation.world", telemetry.SessionID(string(sessionID)))
	defer func() { telemetry.End(span, err) }()

	// A previous flight may have finished between the caller's check and now
	current, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := current.AwaitingWorld(); err != nil {
		return nil, err
	}

	req := generator.WorldRequest{}
	if input != nil && (len(input.Player1Picks) > 0 || len(input.Player2Picks) > 0) {
		req.Player1Picks = slices.Clone(input.Player1Picks)
		req.Player2Picks = slices.Clone(input.Player2Picks)
	} else {
		pool, err := s.storage.GetDraftPool(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		req.Player1Picks = pool.Player1Picks
		req.Player2Picks = pool.Player2Picks
	}

	s.logger.Info("generating world",
		slog.String("session_id", string(sessionID)),
		slog.Int("player1_picks", len(req.Player1Picks)),
		slog.Int("player2_picks", len(req.Player2Picks)),
	)

	world, err := s.generator.GenerateWorld(ctx, req)
	if err != nil {
		s.logger.Error("world generation failed",
			slog.String("session_id", string(sessionID)),
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, model.ErrGeneration) {
			err = fmt.Errorf("%w: %w", model.ErrGeneration, err)
		}
		return nil, err
	}

	session, err = s.storage.UpdateSession(ctx, sessionID, func(sess *model.Session) error {
		if err := sess.ApplyWorld(*world); err != nil {
			return err
		}
		sess.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		s.logger.Warn("generated world discarded",
			slog.String("session_id", string(sessionID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("world generated",
		slog.String("session_id", string(sessionID)),
		slog.String("world", world.Name),
		slog.Int("resource_types", len(world.ResourceTypes)),
	)
	return session, nil
}

// GenerateCard generates a card into the requester's hand and queues its art
func (s *Service) GenerateCard(ctx context.Context, sessionID model.SessionID, requester model.PlayerID, input CardInput) (card *model.Card, err error) {
	ctx, span := telemetry.Start(ctx, "generation.card", telemetry.SessionID(string(sessionID)), telemetry.PlayerID(string(requester)))
	defer func() { telemetry.End(span, err) }()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(requester) {
		return nil, model.ErrNotParticipant
	}
	if session.Phase != model.PhasePlay || session.World == nil {
		return nil, model.ErrWrongPhase
	}

	req := generator.CardRequest{
		WorldDescription: input.WorldDescription,
		Themes:           slices.Clone(input.Themes),
		ResourceTypes:    slices.Clone(input.ResourceTypes),
		FieldContext:     input.FieldContext,
	}
	if req.WorldDescription == "" {
		req.WorldDescription = session.World.Description
	}
	if len(req.ResourceTypes) == 0 {
		req.ResourceTypes = slices.Clone(session.World.ResourceTypes)
	}
	if len(req.Themes) == 0 {
		pool, err := s.storage.GetDraftPool(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		req.Themes = slices.Clone(pool.PicksFor(session, requester))
	}

	draft, err := s.generator.GenerateCard(ctx, req)
	if err != nil {
		s.logger.Error("card generation failed",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(requester)),
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, model.ErrGeneration) {
			err = fmt.Errorf("%w: %w", model.ErrGeneration, err)
		}
		return nil, err
	}

	card = &model.Card{
		ID:          model.CardID(uuid.NewString()),
		SessionID:   sessionID,
		OwnerID:     requester,
		Name:        draft.Name,
		Type:        draft.Type,
		Cost:        draft.Cost,
		Abilities:   slices.Clone(draft.Abilities),
		Power:       draft.Power,
		Toughness:   draft.Toughness,
		FlavorText:  draft.FlavorText,
		ImagePrompt: draft.ImagePrompt,
		Location:    model.LocationHand,
		CreatedAt:   s.clock.Now(),
	}
	if card.Abilities == nil {
		card.Abilities = []model.Ability{}
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrGeneration, err)
	}
	if err := s.storage.SaveCard(ctx, card); err != nil {
		return nil, err
	}

	queued := false
	if card.ImagePrompt != "" && s.images != nil {
		queued = s.images.Enqueue(imaging.NewTask(card, req.WorldDescription))
	}

	s.logger.Info("card generated",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(requester)),
		slog.String("card_id", string(card.ID)),
		slog.String("card_type", string(card.Type)),
		slog.Bool("image_queued", queued),
	)
	return card, nil
}
