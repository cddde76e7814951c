package response

import (
	"time"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/bot"
	"github.com/mcoot/vibedraft/internal/services/session"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromToken creates an AuthResponse from an issued token
func AuthResponseFromToken(t *auth.Token, p *model.Player) AuthResponse {
	return AuthResponse{
		Player:    PlayerFromModel(p),
		Token:     t.Value,
		ExpiresAt: t.ExpiresAt,
	}
}

// World represents a generated world
type World struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ResourceTypes []string `json:"resource_types"`
}

// WorldFromModel converts model.World, returning nil for a nil world
func WorldFromModel(w *model.World) *World {
	if w == nil {
		return nil
	}
	return &World{
		Name:          w.Name,
		Description:   w.Description,
		ResourceTypes: w.ResourceTypes,
	}
}

// Session represents a session in API responses
type Session struct {
	ID          string    `json:"id"`
	Phase       string    `json:"phase"`
	Status      string    `json:"status"`
	TurnPhase   string    `json:"turn_phase"`
	Player1     *Player   `json:"player1"`
	Player2     *Player   `json:"player2"`
	Player1Life int       `json:"player1_life"`
	Player2Life int       `json:"player2_life"`
	CurrentTurn string    `json:"current_turn,omitempty"`
	World       *World    `json:"world"`
	Winner      string    `json:"winner,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionFromModel converts model.Session. Seats carry only the player id.
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:          string(s.ID),
		Phase:       string(s.Phase),
		Status:      string(s.Status),
		TurnPhase:   string(s.TurnPhase),
		Player1:     seat(s.Player1, nil),
		Player2:     seat(s.Player2, nil),
		Player1Life: s.Player1Life,
		Player2Life: s.Player2Life,
		CurrentTurn: string(s.CurrentTurn),
		World:       WorldFromModel(s.World),
		Winner:      string(s.Winner),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionFromView converts a session view, filling in seat display data
func SessionFromView(v *session.View) Session {
	s := SessionFromModel(v.Session)
	s.Player1 = seat(v.Session.Player1, v.Player1)
	s.Player2 = seat(v.Session.Player2, v.Player2)
	return s
}

func seat(id model.PlayerID, p *model.Player) *Player {
	if id == "" {
		return nil
	}
	if p == nil {
		return &Player{ID: string(id)}
	}
	resp := PlayerFromModel(p)
	resp.Email = ""
	return &resp
}

// SessionsFromModel converts a session listing
func SessionsFromModel(sessions []*model.Session) []Session {
	result := make([]Session, len(sessions))
	for i, s := range sessions {
		result[i] = SessionFromModel(s)
	}
	return result
}

// Role is the caller's seat in a session
type Role struct {
	Role          string `json:"role"`
	IsParticipant bool   `json:"is_participant"`
}

// DraftPool represents a session's word pool
type DraftPool struct {
	SessionID     string   `json:"session_id"`
	State         string   `json:"state"`
	Words         []string `json:"words"`
	Player1Picks  []string `json:"player1_picks"`
	Player2Picks  []string `json:"player2_picks"`
	CurrentPicker string   `json:"current_picker,omitempty"`
	PicksStarted  bool     `json:"picks_started"`
	Version       int64    `json:"version"`
}

// DraftPoolFromModel converts model.DraftPool
func DraftPoolFromModel(p *model.DraftPool) DraftPool {
	return DraftPool{
		SessionID:     string(p.SessionID),
		State:         string(p.State()),
		Words:         p.Words,
		Player1Picks:  p.Player1Picks,
		Player2Picks:  p.Player2Picks,
		CurrentPicker: string(p.CurrentPicker),
		PicksStarted:  p.PicksStarted,
		Version:       p.Version,
	}
}

// SubmitWordsResponse is the response after submitting words
type SubmitWordsResponse struct {
	Accepted int       `json:"accepted"`
	Pool     DraftPool `json:"pool"`
}

// BotAction is a pick the bot made in response to a request
type BotAction struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Word     string `json:"word,omitempty"`
}

// BotActionsFromModel converts bot actions
func BotActionsFromModel(actions []bot.BotAction) []BotAction {
	if len(actions) == 0 {
		return nil
	}
	result := make([]BotAction, len(actions))
	for i, a := range actions {
		result[i] = BotAction{Type: string(a.Type), PlayerID: string(a.PlayerID), Word: a.Word}
	}
	return result
}

// PickResponse is the response after picking a word. When the pick completed
// the draft the world is generated in the same request; a failure to do so
// is reported in GenerationError without failing the pick.
type PickResponse struct {
	Picked              string      `json:"picked"`
	Complete            bool        `json:"complete"`
	Remaining           int         `json:"remaining"`
	GenerationTriggered bool        `json:"generation_triggered"`
	Pool                DraftPool   `json:"pool"`
	Session             Session     `json:"session"`
	BotActions          []BotAction `json:"bot_actions,omitempty"`
	GenerationError     string      `json:"generation_error,omitempty"`
}

// Ability is a card ability. Params keep the mechanic's own field names.
type Ability struct {
	Mechanic string `json:"mechanic"`
	Params   any    `json:"params"`
	Text     string `json:"text"`
}

// Card represents a card in API responses
type Card struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Type        string    `json:"card_type"`
	Cost        string    `json:"mana_cost"`
	Abilities   []Ability `json:"abilities"`
	Power       *int      `json:"power,omitempty"`
	Toughness   *int      `json:"toughness,omitempty"`
	FlavorText  string    `json:"flavor_text"`
	ImagePrompt string    `json:"image_prompt,omitempty"`
	ImageID     string    `json:"image_id,omitempty"`
	Location    string    `json:"location"`
	Tapped      bool      `json:"tapped"`
	CreatedAt   time.Time `json:"created_at"`
}

// CardFromModel converts model.Card
func CardFromModel(c *model.Card) Card {
	abilities := make([]Ability, len(c.Abilities))
	for i, a := range c.Abilities {
		abilities[i] = Ability{Mechanic: string(a.Mechanic), Params: a.Params, Text: a.Text}
	}
	return Card{
		ID:          string(c.ID),
		SessionID:   string(c.SessionID),
		OwnerID:     string(c.OwnerID),
		Name:        c.Name,
		Type:        string(c.Type),
		Cost:        c.Cost,
		Abilities:   abilities,
		Power:       c.Power,
		Toughness:   c.Toughness,
		FlavorText:  c.FlavorText,
		ImagePrompt: c.ImagePrompt,
		ImageID:     string(c.ImageRef),
		Location:    string(c.Location),
		Tapped:      c.Tapped,
		CreatedAt:   c.CreatedAt,
	}
}

// CardsFromModel converts a card listing
func CardsFromModel(cards []*model.Card) []Card {
	result := make([]Card, len(cards))
	for i, c := range cards {
		result[i] = CardFromModel(c)
	}
	return result
}

// BotPickResponse is the response of the dev bot pick endpoint
type BotPickResponse struct {
	Picked bool       `json:"picked"`
	Reason string     `json:"reason"`
	Word   string     `json:"word,omitempty"`
	Pool   *DraftPool `json:"pool,omitempty"`
}
