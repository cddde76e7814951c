package generator

import (
	"fmt"
	"strings"

	"github.com/mcoot/vibedraft/internal/model"
)

// worldDescriptionExcerpt bounds how much world text goes into image prompts
const worldDescriptionExcerpt = 200

func worldPrompt(req WorldRequest) string {
	var b strings.Builder
	b.WriteString("You are building the setting for a two-player fantasy card game. ")
	b.WriteString("Both players drafted themes; combine every one of them into a single coherent world.\n\n")
	fmt.Fprintf(&b, "Player 1 themes: %s\n", strings.Join(req.Player1Picks, ", "))
	fmt.Fprintf(&b, "Player 2 themes: %s\n\n", strings.Join(req.Player2Picks, ", "))
	b.WriteString("Describe the world in two or three vivid paragraphs covering its atmosphere, creatures, magic and conflicts. ")
	fmt.Fprintf(&b, "Invent between %d and %d resource types cards will be paid with, and give the world a name.\n", MinResourceTypes, MaxResourceTypes)
	b.WriteString("Answer with JSON fields worldName, worldDescription and resourceTypes.")
	return b.String()
}

func cardPrompt(req CardRequest) string {
	mechanics := make([]string, 0, 16)
	for _, m := range model.Mechanics() {
		mechanics = append(mechanics, string(m))
	}
	keywords := make([]string, len(model.Keywords))
	for i, k := range model.Keywords {
		keywords[i] = string(k)
	}

	var b strings.Builder
	b.WriteString("Design one balanced card for a fantasy trading card game.\n\n")
	fmt.Fprintf(&b, "World: %s\n", req.WorldDescription)
	fmt.Fprintf(&b, "Player themes: %s\n", strings.Join(req.Themes, ", "))
	fmt.Fprintf(&b, "Resource types: %s\n", strings.Join(req.ResourceTypes, ", "))
	fmt.Fprintf(&b, "Ability mechanics: %s\n", strings.Join(mechanics, ", "))
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(keywords, ", "))
	if req.FieldContext != "" {
		fmt.Fprintf(&b, "Current field: %s\n", req.FieldContext)
	}
	b.WriteString("\nCard types are creature, instant, sorcery, enchantment and artifact. ")
	b.WriteString("Only creatures have power and toughness. ")
	b.WriteString("Write the mana cost using the resource types, for example \"2 Ember, 1 Tide\". ")
	b.WriteString("Higher costs buy stronger effects. ")
	b.WriteString("Each ability names a mechanicId, its params, and the flavoredText players read. ")
	b.WriteString("Include flavorText and an imagePrompt describing the card art.")
	return b.String()
}

func imagePrompt(req ImageRequest) string {
	world := req.WorldDescription
	if r := []rune(world); len(r) > worldDescriptionExcerpt {
		world = string(r[:worldDescriptionExcerpt])
	}
	return fmt.Sprintf("Fantasy trading card illustration, detailed, vibrant colours, dramatic lighting.\n%s\nWorld: %s", req.Prompt, world)
}
