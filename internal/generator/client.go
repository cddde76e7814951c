// Package generator is the boundary to the content-generation service that
// writes worlds, cards and card art.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/vibedraft/internal/model"
)

// ErrUnparsableResponse is returned when the service answers with content
// that is not valid JSON or does not match the requested schema
var ErrUnparsableResponse = errors.New("unparsable generation response")

// WorldRequest carries both players' draft picks
type WorldRequest struct {
	Player1Picks []string
	Player2Picks []string
}

// CardRequest is the context for generating one card
type CardRequest struct {
	WorldDescription string
	Themes           []string
	ResourceTypes    []string
	FieldContext     string // optional
}

// CardDraft is a generated card before it is assigned an owner and id
type CardDraft struct {
	Name        string          `json:"name"`
	Type        model.CardType  `json:"cardType"`
	Cost        string          `json:"manaCost"`
	Power       *int            `json:"power,omitempty"`
	Toughness   *int            `json:"toughness,omitempty"`
	Abilities   []model.Ability `json:"abilities"`
	FlavorText  string          `json:"flavorText"`
	ImagePrompt string          `json:"imagePrompt"`
}

// ImageRequest describes the art to generate for a card
type ImageRequest struct {
	Prompt           string
	WorldDescription string
}

// Image is generated art
type Image struct {
	ContentType string
	Data        []byte
}

// Client generates content. Implementations return errors wrapping
// model.ErrGeneration for every failure of the remote service.
type Client interface {
	GenerateWorld(ctx context.Context, req WorldRequest) (*model.World, error)
	GenerateCard(ctx context.Context, req CardRequest) (*CardDraft, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// generationError classifies err as a generation failure
func generationError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrGeneration, op, err)
}
