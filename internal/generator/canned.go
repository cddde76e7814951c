package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mcoot/vibedraft/internal/model"
)

// placeholderPNG is a 1x1 transparent PNG
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Canned is a deterministic Client used in tests and when no API key is
// configured. Each hook, when set, replaces the default response.
type Canned struct {
	WorldFn func(ctx context.Context, req WorldRequest) (*model.World, error)
	CardFn  func(ctx context.Context, req CardRequest) (*CardDraft, error)
	ImageFn func(ctx context.Context, req ImageRequest) (*Image, error)

	mu         sync.Mutex
	worldCalls int
	cardCalls  int
	imageCalls int
}

// Ensure Canned implements Client
var _ Client = (*Canned)(nil)

// NewCanned creates a Canned client with default responses
func NewCanned() *Canned {
	return &Canned{}
}

// CannedWorld is the world returned when no WorldFn is set
func CannedWorld(req WorldRequest) *model.World {
	themes := append(append([]string{}, req.Player1Picks...), req.Player2Picks...)
	desc := "A realm shaped by " + strings.Join(themes, ", ") + "."
	if len(themes) == 0 {
		desc = "A realm waiting to be shaped."
	}
	return &model.World{
		Name:          "The Drafted Realm",
		Description:   desc,
		ResourceTypes: []string{"Crystal Essence", "Shadow Mana", "Ancient Power"},
	}
}

func (c *Canned) GenerateWorld(ctx context.Context, req WorldRequest) (*model.World, error) {
	c.mu.Lock()
	c.worldCalls++
	c.mu.Unlock()

	if c.WorldFn != nil {
		return c.WorldFn(ctx, req)
	}
	return CannedWorld(req), nil
}

func (c *Canned) GenerateCard(ctx context.Context, req CardRequest) (*CardDraft, error) {
	c.mu.Lock()
	c.cardCalls++
	n := c.cardCalls
	c.mu.Unlock()

	if c.CardFn != nil {
		return c.CardFn(ctx, req)
	}

	theme := "Wanderer"
	if len(req.Themes) > 0 {
		theme = req.Themes[(n-1)%len(req.Themes)]
	}
	resource := "Mana"
	if len(req.ResourceTypes) > 0 {
		resource = req.ResourceTypes[0]
	}
	strike := model.NewAbility(&model.DealDamageParams{Target: "any", Amount: 2}, "Strike for 2.")
	return &CardDraft{
		Name:        fmt.Sprintf("%s Guardian %d", titleCase(theme), n),
		Type:        model.CardCreature,
		Cost:        "2 " + resource,
		Power:       intPtr(2),
		Toughness:   intPtr(3),
		Abilities:   []model.Ability{strike},
		FlavorText:  "Born of " + theme + ".",
		ImagePrompt: "A guardian of " + theme,
	}, nil
}

func (c *Canned) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	c.mu.Lock()
	c.imageCalls++
	c.mu.Unlock()

	if c.ImageFn != nil {
		return c.ImageFn(ctx, req)
	}
	return &Image{ContentType: "image/png", Data: append([]byte{}, placeholderPNG...)}, nil
}

// Calls reports how many world, card and image requests were made
func (c *Canned) Calls() (world, card, image int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldCalls, c.cardCalls, c.imageCalls
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
