package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Session events
	EventPlayerJoined     EventType = "player_joined"
	EventWordsSubmitted   EventType = "words_submitted"
	EventPickingStarted   EventType = "picking_started"
	EventWordPicked       EventType = "word_picked"
	EventDraftComplete    EventType = "draft_complete"
	EventWorldGenerated   EventType = "world_generated"
	EventGenerationFailed EventType = "generation_failed"

	// Card events
	EventCardGenerated EventType = "card_generated"
	EventImageReady    EventType = "image_ready"
)

// Event is published to everyone watching a session
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID SessionID `json:"sessionId"`
	PlayerID  PlayerID  `json:"playerId,omitempty"` // who triggered it
	Payload   any       `json:"payload,omitempty"`
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID    PlayerID `json:"playerId"`
	DisplayName string   `json:"displayName"`
}

// WordsSubmittedPayload contains data for words submitted events
type WordsSubmittedPayload struct {
	Accepted int `json:"accepted"`
	PoolSize int `json:"poolSize"`
}

// WordPickedPayload contains data for word picked events
type WordPickedPayload struct {
	Word       string   `json:"word"`
	Remaining  int      `json:"remaining"`
	NextPicker PlayerID `json:"nextPicker,omitempty"`
}

// WorldGeneratedPayload contains data for world generated events
type WorldGeneratedPayload struct {
	World World `json:"world"`
}

// CardPayload identifies the card an event refers to
type CardPayload struct {
	CardID  CardID  `json:"cardId"`
	Name    string  `json:"name,omitempty"`
	ImageID ImageID `json:"imageId,omitempty"`
}

// FailurePayload carries a user-facing failure reason
type FailurePayload struct {
	Reason string `json:"reason"`
}
