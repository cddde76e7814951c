package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/vibedraft/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuth(v)
	case response.Session:
		o.printSession(v)
	case []response.Session:
		o.printSessions(v)
	case response.Role:
		o.printRole(v)
	case response.DraftPool:
		o.printPool(v)
	case response.SubmitWordsResponse:
		fmt.Printf("Accepted %d word(s)\n", v.Accepted)
		o.printPool(v.Pool)
	case response.PickResponse:
		o.printPick(v)
	case response.BotPickResponse:
		o.printBotPick(v)
	case response.Card:
		o.printCard(v)
	case []response.Card:
		o.printCards(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.Email != "" {
		fmt.Printf("Email: %s\n", p.Email)
	}
	if p.IsBot {
		fmt.Println("Bot: yes")
	}
}

func (o *Output) printAuth(a response.AuthResponse) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.Token)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format("2006-01-02 15:04:05"))
}

func seatName(p *response.Player) string {
	switch {
	case p == nil:
		return "(open)"
	case p.DisplayName == "":
		return p.ID
	default:
		return fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Phase: %s (%s)\n", s.Phase, s.Status)
	fmt.Printf("Player 1: %s, life %d\n", seatName(s.Player1), s.Player1Life)
	if s.Player2 == nil {
		fmt.Printf("Player 2: %s\n", seatName(nil))
	} else {
		fmt.Printf("Player 2: %s, life %d\n", seatName(s.Player2), s.Player2Life)
	}

	if s.World != nil {
		fmt.Printf("\nWorld: %s\n", s.World.Name)
		fmt.Printf("  %s\n", s.World.Description)
		fmt.Printf("  Resources: %s\n", strings.Join(s.World.ResourceTypes, ", "))
		fmt.Printf("Turn: %s (%s)\n", s.CurrentTurn, s.TurnPhase)
	}

	if s.Winner != "" {
		fmt.Printf("\nWinner: %s\n", s.Winner)
	}
}

func (o *Output) printSessions(sessions []response.Session) {
	if len(sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range sessions {
		fmt.Printf("  %s  %-10s  %s vs %s\n", s.ID, s.Phase, seatName(s.Player1), seatName(s.Player2))
	}
}

func (o *Output) printRole(r response.Role) {
	if !r.IsParticipant {
		fmt.Println("Not a participant")
		return
	}
	fmt.Printf("Role: %s\n", r.Role)
}

func (o *Output) printPool(p response.DraftPool) {
	fmt.Printf("Draft: %s\n", p.State)
	fmt.Printf("Pool (%d): %s\n", len(p.Words), strings.Join(p.Words, ", "))
	fmt.Printf("Player 1 picks: %s\n", strings.Join(p.Player1Picks, ", "))
	fmt.Printf("Player 2 picks: %s\n", strings.Join(p.Player2Picks, ", "))
	if p.CurrentPicker != "" {
		fmt.Printf("Picking: %s\n", p.CurrentPicker)
	}
}

func (o *Output) printPick(p response.PickResponse) {
	fmt.Printf("Picked: %s (%d left)\n", p.Picked, p.Remaining)
	for _, a := range p.BotActions {
		if a.Word != "" {
			fmt.Printf("Bot %s picked: %s\n", a.PlayerID, a.Word)
		} else {
			fmt.Printf("Bot %s: %s\n", a.PlayerID, a.Type)
		}
	}

	switch {
	case p.GenerationError != "":
		fmt.Printf("Draft complete, but world generation failed: %s\n", p.GenerationError)
		fmt.Println("Retry with: vibedraft world generate " + p.Session.ID)
	case p.Complete:
		fmt.Println("Draft complete!")
		o.printSession(p.Session)
	default:
		fmt.Printf("Next picker: %s\n", p.Pool.CurrentPicker)
	}
}

func (o *Output) printBotPick(b response.BotPickResponse) {
	if !b.Picked {
		fmt.Printf("Bot did not pick: %s\n", b.Reason)
		return
	}
	fmt.Printf("Bot picked: %s\n", b.Word)
	if b.Pool != nil {
		o.printPool(*b.Pool)
	}
}

func (o *Output) printCard(c response.Card) {
	fmt.Printf("%s  [%s]  %s\n", c.Name, c.Type, c.Cost)
	if c.Power != nil && c.Toughness != nil {
		fmt.Printf("  %d/%d\n", *c.Power, *c.Toughness)
	}
	for _, a := range c.Abilities {
		fmt.Printf("  %s: %s\n", a.Mechanic, a.Text)
	}
	if c.FlavorText != "" {
		fmt.Printf("  \"%s\"\n", c.FlavorText)
	}
	art := "pending"
	if c.ImageID != "" {
		art = c.ImageID
	}
	fmt.Printf("  id %s, %s, art %s\n", c.ID, c.Location, art)
}

func (o *Output) printCards(cards []response.Card) {
	if len(cards) == 0 {
		fmt.Println("No cards")
		return
	}
	for i, c := range cards {
		if i > 0 {
			fmt.Println()
		}
		o.printCard(c)
	}
}
