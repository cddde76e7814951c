package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/model"
)

// Broadcaster publishes session events to SSE clients as JSON
type Broadcaster struct {
	hubManager *HubManager
	clock      clock.Clock
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, clock clock.Clock, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		clock:      clock,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends an event to every client watching its session.
// Events for sessions nobody is watching are discarded.
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.hubManager.GetHub(event.SessionID)
	if hub == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.clock.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("session_id", string(event.SessionID)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))
}

// PlayerJoined announces the second player taking their seat
func (b *Broadcaster) PlayerJoined(session *model.Session, player *model.Player) {
	b.Publish(model.Event{
		Type:      model.EventPlayerJoined,
		SessionID: session.ID,
		PlayerID:  player.ID,
		Payload:   model.PlayerJoinedPayload{PlayerID: player.ID, DisplayName: player.DisplayName},
	})
}

// WordsSubmitted announces new words in the pool
func (b *Broadcaster) WordsSubmitted(sessionID model.SessionID, playerID model.PlayerID, accepted int, pool *model.DraftPool) {
	b.Publish(model.Event{
		Type:      model.EventWordsSubmitted,
		SessionID: sessionID,
		PlayerID:  playerID,
		Payload:   model.WordsSubmittedPayload{Accepted: accepted, PoolSize: len(pool.Words)},
	})
}

// PickingStarted announces the shuffled pool and the first picker
func (b *Broadcaster) PickingStarted(sessionID model.SessionID, pool *model.DraftPool) {
	b.Publish(model.Event{
		Type:      model.EventPickingStarted,
		SessionID: sessionID,
		PlayerID:  pool.CurrentPicker,
	})
}

// WordPicked announces a pick, and the end of the draft if it completed it
func (b *Broadcaster) WordPicked(sessionID model.SessionID, playerID model.PlayerID, result model.PickResult, pool *model.DraftPool) {
	b.Publish(model.Event{
		Type:      model.EventWordPicked,
		SessionID: sessionID,
		PlayerID:  playerID,
		Payload: model.WordPickedPayload{
			Word:       result.Picked,
			Remaining:  result.Remaining,
			NextPicker: pool.CurrentPicker,
		},
	})
	if result.Complete {
		b.Publish(model.Event{Type: model.EventDraftComplete, SessionID: sessionID})
	}
}

// WorldGenerated announces the session entering play
func (b *Broadcaster) WorldGenerated(session *model.Session) {
	if session.World == nil {
		return
	}
	b.Publish(model.Event{
		Type:      model.EventWorldGenerated,
		SessionID: session.ID,
		Payload:   model.WorldGeneratedPayload{World: *session.World},
	})
}

// GenerationFailed announces a failed world generation
func (b *Broadcaster) GenerationFailed(sessionID model.SessionID, err error) {
	b.Publish(model.Event{
		Type:      model.EventGenerationFailed,
		SessionID: sessionID,
		Payload:   model.FailurePayload{Reason: err.Error()},
	})
}

// CardGenerated announces a card added to a player's hand
func (b *Broadcaster) CardGenerated(card *model.Card) {
	b.Publish(model.Event{
		Type:      model.EventCardGenerated,
		SessionID: card.SessionID,
		PlayerID:  card.OwnerID,
		Payload:   model.CardPayload{CardID: card.ID, Name: card.Name},
	})
}

// ImageReady announces art attached to a card
func (b *Broadcaster) ImageReady(card *model.Card) {
	b.Publish(model.Event{
		Type:      model.EventImageReady,
		SessionID: card.SessionID,
		PlayerID:  card.OwnerID,
		Payload:   model.CardPayload{CardID: card.ID, Name: card.Name, ImageID: card.ImageRef},
	})
}
