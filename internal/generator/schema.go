package generator

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcoot/vibedraft/internal/model"
)

// Resource type bounds for a generated world
const (
	MinResourceTypes = 3
	MaxResourceTypes = 5
)

// generatedCardTypes are the types the generator may produce; lands are not generated
var generatedCardTypes = []model.CardType{
	model.CardCreature, model.CardInstant, model.CardSorcery, model.CardEnchantment, model.CardArtifact,
}

func intPtr(v int) *int { return &v }

// WorldSchema constrains generated worlds
func WorldSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"worldName":        {Type: "string", MinLength: intPtr(1)},
			"worldDescription": {Type: "string", MinLength: intPtr(1)},
			"resourceTypes": {
				Type:     "array",
				Items:    &jsonschema.Schema{Type: "string", MinLength: intPtr(1)},
				MinItems: intPtr(MinResourceTypes),
				MaxItems: intPtr(MaxResourceTypes),
			},
		},
		Required: []string{"worldName", "worldDescription", "resourceTypes"},
	}
}

// CardSchema constrains generated cards
func CardSchema() *jsonschema.Schema {
	cardTypes := make([]any, len(generatedCardTypes))
	for i, t := range generatedCardTypes {
		cardTypes[i] = string(t)
	}
	mechanics := make([]any, 0, 16)
	for _, m := range model.Mechanics() {
		mechanics = append(mechanics, string(m))
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":      {Type: "string", MinLength: intPtr(1)},
			"cardType":  {Type: "string", Enum: cardTypes},
			"manaCost":  {Type: "string"},
			"power":     {Type: "integer"},
			"toughness": {Type: "integer"},
			"abilities": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"mechanicId":   {Type: "string", Enum: mechanics},
						"params":       {Type: "object"},
						"flavoredText": {Type: "string"},
					},
					Required: []string{"mechanicId", "params"},
				},
			},
			"flavorText":  {Type: "string"},
			"imagePrompt": {Type: "string"},
		},
		Required: []string{"name", "cardType", "manaCost", "abilities", "flavorText"},
	}
}

// decodeValidated checks raw against schema and then decodes it into out
func decodeValidated(raw []byte, schema *jsonschema.Schema, out any) error {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	return nil
}

type worldJSON struct {
	WorldName        string   `json:"worldName"`
	WorldDescription string   `json:"worldDescription"`
	ResourceTypes    []string `json:"resourceTypes"`
}

// ParseWorld decodes and validates a generated world
func ParseWorld(raw []byte) (*model.World, error) {
	var w worldJSON
	if err := decodeValidated(raw, WorldSchema(), &w); err != nil {
		return nil, err
	}
	return &model.World{Name: w.WorldName, Description: w.WorldDescription, ResourceTypes: w.ResourceTypes}, nil
}

// ParseCard decodes and validates a generated card
func ParseCard(raw []byte) (*CardDraft, error) {
	var card CardDraft
	if err := decodeValidated(raw, CardSchema(), &card); err != nil {
		return nil, err
	}
	// Stats on non-creatures are discarded
	if card.Type != model.CardCreature {
		card.Power, card.Toughness = nil, nil
	} else if card.Power == nil || card.Toughness == nil {
		return nil, fmt.Errorf("%w: creature without power and toughness", ErrUnparsableResponse)
	}
	if card.Abilities == nil {
		card.Abilities = []model.Ability{}
	}
	return &card, nil
}
