package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a participant known by its auth subject. Players are created
// lazily on their first authenticated action and never deleted.
type Player struct {
	ID          PlayerID  `json:"id"`
	AuthSubject string    `json:"authSubject"` // unique, opaque identity-provider subject
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	IsBot       bool      `json:"isBot,omitempty"`
	BotStrategy string    `json:"botStrategy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	c := *p
	return &c
}

// Account is an identity-provider record for a registered user.
// Stored separately so the password hash never travels with the player.
type Account struct {
	Username     string    `json:"username"` // login username (immutable)
	PasswordHash string    `json:"passwordHash"`
	Subject      string    `json:"subject"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is what the identity provider vouches for on each request
type Identity struct {
	Subject string
	Name    string
	Email   string
}

// Subject prefixes
const (
	GuestSubjectPrefix = "guest:"
	UserSubjectPrefix  = "user:"
)
