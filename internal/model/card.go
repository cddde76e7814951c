package model

import (
	"fmt"
	"slices"
	"time"
)

// CardID uniquely identifies a card
type CardID string

// ImageID identifies a stored card image
type ImageID string

// CardType is the printed type line of a card
type CardType string

const (
	CardCreature    CardType = "creature"
	CardInstant     CardType = "instant"
	CardSorcery     CardType = "sorcery"
	CardEnchantment CardType = "enchantment"
	CardArtifact    CardType = "artifact"
	CardLand        CardType = "land"
)

// CardTypes lists every card type in display order
var CardTypes = []CardType{CardCreature, CardInstant, CardSorcery, CardEnchantment, CardArtifact, CardLand}

// Location is where a card currently sits
type Location string

const (
	LocationHand      Location = "hand"
	LocationField     Location = "field"
	LocationGraveyard Location = "graveyard"
	LocationExile     Location = "exile"
)

// Card is a generated card owned by one player in one session
type Card struct {
	ID          CardID    `json:"id"`
	SessionID   SessionID `json:"sessionId"`
	OwnerID     PlayerID  `json:"ownerId"`
	Name        string    `json:"name"`
	Type        CardType  `json:"cardType"`
	Cost        string    `json:"manaCost"`
	Abilities   []Ability `json:"abilities"`
	Power       *int      `json:"power,omitempty"`
	Toughness   *int      `json:"toughness,omitempty"`
	FlavorText  string    `json:"flavorText"`
	ImagePrompt string    `json:"imagePrompt,omitempty"`
	ImageRef    ImageID   `json:"imageRef,omitempty"`
	Location    Location  `json:"location"`
	Tapped      bool      `json:"tapped"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a deep copy of the card
func (c *Card) Clone() *Card {
	cp := *c
	cp.Abilities = slices.Clone(c.Abilities)
	if c.Power != nil {
		v := *c.Power
		cp.Power = &v
	}
	if c.Toughness != nil {
		v := *c.Toughness
		cp.Toughness = &v
	}
	return &cp
}

// Validate checks the structural rules every stored card must satisfy
func (c *Card) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCard)
	}
	if !slices.Contains(CardTypes, c.Type) {
		return fmt.Errorf("%w: unknown card type %q", ErrInvalidCard, c.Type)
	}
	hasStats := c.Power != nil && c.Toughness != nil
	if c.Type == CardCreature && !hasStats {
		return fmt.Errorf("%w: creature requires power and toughness", ErrInvalidCard)
	}
	if c.Type != CardCreature && (c.Power != nil || c.Toughness != nil) {
		return fmt.Errorf("%w: only creatures have power and toughness", ErrInvalidCard)
	}
	for i, a := range c.Abilities {
		if a.Params == nil {
			return fmt.Errorf("%w: ability %d has no parameters", ErrInvalidCard, i)
		}
		if a.Params.Mechanic() != a.Mechanic {
			return fmt.Errorf("%w: ability %d parameters do not match %s", ErrInvalidCard, i, a.Mechanic)
		}
	}
	return nil
}

// Image is a stored card illustration
type Image struct {
	ID          ImageID   `json:"id"`
	CardID      CardID    `json:"cardId"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CardFilter narrows a card listing. Empty fields match everything.
type CardFilter struct {
	SessionID SessionID
	OwnerID   PlayerID
	Location  Location
}

// Matches reports whether the card passes the filter
func (f CardFilter) Matches(c *Card) bool {
	return (f.SessionID == "" || c.SessionID == f.SessionID) &&
		(f.OwnerID == "" || c.OwnerID == f.OwnerID) &&
		(f.Location == "" || c.Location == f.Location)
}
