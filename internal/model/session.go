package model

import (
	"slices"
	"time"
)

// SessionID uniquely identifies a game session
type SessionID string

// Phase is the coarse lifecycle stage of a session. Phases only move forward.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"    // player 1 alone
	PhaseDraft      Phase = "draft"      // both players submitting and picking words
	PhaseGenerating Phase = "generating" // draft complete, world being generated
	PhasePlay       Phase = "play"
)

var phaseOrder = map[Phase]int{
	PhaseWaiting:    0,
	PhaseDraft:      1,
	PhaseGenerating: 2,
	PhasePlay:       3,
}

// SessionStatus is the lobby-facing status of a session
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusActive   SessionStatus = "active"
	StatusFinished SessionStatus = "finished"
)

// TurnPhase labels the step of the current play turn. It carries no rules.
type TurnPhase string

const (
	TurnUntap  TurnPhase = "untap"
	TurnUpkeep TurnPhase = "upkeep"
	TurnDraw   TurnPhase = "draw"
	TurnMain1  TurnPhase = "main1"
	TurnCombat TurnPhase = "combat"
	TurnMain2  TurnPhase = "main2"
	TurnEnd    TurnPhase = "end"
)

// StartingLife is each player's life total when they enter a session
const StartingLife = 100

// World is the generated setting a session plays in
type World struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ResourceTypes []string `json:"resourceTypes"`
}

// Session is one two-player game
type Session struct {
	ID          SessionID     `json:"id"`
	Player1     PlayerID      `json:"player1"`
	Player2     PlayerID      `json:"player2,omitempty"`
	Phase       Phase         `json:"phase"`
	Status      SessionStatus `json:"status"`
	TurnPhase   TurnPhase     `json:"turnPhase"`
	Player1Life int           `json:"player1Life"`
	Player2Life int           `json:"player2Life"`
	CurrentTurn PlayerID      `json:"currentTurn,omitempty"`
	World       *World        `json:"world,omitempty"`
	Winner      PlayerID      `json:"winner,omitempty"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewSession creates a session waiting for its second player
func NewSession(id SessionID, creator PlayerID, now time.Time) *Session {
	return &Session{
		ID:          id,
		Player1:     creator,
		Phase:       PhaseWaiting,
		Status:      StatusWaiting,
		TurnPhase:   TurnUntap,
		Player1Life: StartingLife,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	if s.World != nil {
		w := *s.World
		w.ResourceTypes = slices.Clone(s.World.ResourceTypes)
		c.World = &w
	}
	return &c
}

// IsParticipant reports whether the player is one of the two seats
func (s *Session) IsParticipant(id PlayerID) bool {
	return id != "" && (s.Player1 == id || s.Player2 == id)
}

// Role returns "player1", "player2" or "" for a non-participant
func (s *Session) Role(id PlayerID) string {
	switch {
	case id == "":
		return ""
	case s.Player1 == id:
		return "player1"
	case s.Player2 == id:
		return "player2"
	default:
		return ""
	}
}

// Opponent returns the other participant, if seated
func (s *Session) Opponent(id PlayerID) PlayerID {
	if s.Player1 == id {
		return s.Player2
	}
	return s.Player1
}

// SetPhase moves the session forward. Moving to the same phase is a no-op.
func (s *Session) SetPhase(p Phase) error {
	if phaseOrder[p] < phaseOrder[s.Phase] {
		return ErrPhaseRegression
	}
	s.Phase = p
	return nil
}

// Join seats a second player and opens the draft
func (s *Session) Join(id PlayerID) error {
	if s.Player1 == id {
		return ErrSelfJoin
	}
	if s.Player2 != "" {
		return ErrSessionFull
	}
	if err := s.SetPhase(PhaseDraft); err != nil {
		return err
	}
	s.Player2 = id
	s.Player2Life = StartingLife
	s.Status = StatusActive
	return nil
}

// ApplyWorld records the generated world and starts play.
// Only valid once, while the session is generating.
func (s *Session) ApplyWorld(w World) error {
	if err := s.AwaitingWorld(); err != nil {
		return err
	}
	if err := s.SetPhase(PhasePlay); err != nil {
		return err
	}
	s.World = &w
	s.TurnPhase = TurnDraw
	s.CurrentTurn = s.Player1
	return nil
}

// AwaitingWorld reports whether a world may be applied to the session now
func (s *Session) AwaitingWorld() error {
	if s.World != nil || s.Phase == PhasePlay {
		return ErrAlreadyGenerated
	}
	if s.Phase != PhaseGenerating {
		return ErrWrongPhase
	}
	return nil
}
