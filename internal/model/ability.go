package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Mechanic identifies what an ability does
type Mechanic string

const (
	MechanicDealDamage    Mechanic = "DEAL_DAMAGE"
	MechanicDealDamageAOE Mechanic = "DEAL_DAMAGE_AOE"
	MechanicHeal          Mechanic = "HEAL"
	MechanicGainLife      Mechanic = "GAIN_LIFE"
	MechanicDrawCards     Mechanic = "DRAW_CARDS"
	MechanicDiscardCards  Mechanic = "DISCARD_CARDS"
	MechanicDestroy       Mechanic = "DESTROY"
	MechanicExile         Mechanic = "EXILE"
	MechanicReturnToHand  Mechanic = "RETURN_TO_HAND"
	MechanicBuffStats     Mechanic = "BUFF_STATS"
	MechanicGrantKeyword  Mechanic = "GRANT_KEYWORD"
	MechanicTap           Mechanic = "TAP"
	MechanicUntap         Mechanic = "UNTAP"
	MechanicCopy          Mechanic = "COPY"
	MechanicCounter       Mechanic = "COUNTER"
	MechanicAddMana       Mechanic = "ADD_MANA"
)

// Keyword is a static creature ability granted by GRANT_KEYWORD
type Keyword string

const (
	KeywordFlying      Keyword = "FLYING"
	KeywordTrample     Keyword = "TRAMPLE"
	KeywordHaste       Keyword = "HASTE"
	KeywordVigilance   Keyword = "VIGILANCE"
	KeywordDeathtouch  Keyword = "DEATHTOUCH"
	KeywordLifelink    Keyword = "LIFELINK"
	KeywordFirstStrike Keyword = "FIRST_STRIKE"
	KeywordHexproof    Keyword = "HEXPROOF"
)

// Keywords lists every known keyword
var Keywords = []Keyword{
	KeywordFlying, KeywordTrample, KeywordHaste, KeywordVigilance,
	KeywordDeathtouch, KeywordLifelink, KeywordFirstStrike, KeywordHexproof,
}

// AbilityParams is the typed parameter set of one mechanic
type AbilityParams interface {
	Mechanic() Mechanic
	Validate() error
}

var paramFactories = map[Mechanic]func() AbilityParams{
	MechanicDealDamage:    func() AbilityParams { return &DealDamageParams{} },
	MechanicDealDamageAOE: func() AbilityParams { return &DealDamageAOEParams{} },
	MechanicHeal:          func() AbilityParams { return &HealParams{} },
	MechanicGainLife:      func() AbilityParams { return &GainLifeParams{} },
	MechanicDrawCards:     func() AbilityParams { return &DrawCardsParams{} },
	MechanicDiscardCards:  func() AbilityParams { return &DiscardCardsParams{} },
	MechanicDestroy:       func() AbilityParams { return &DestroyParams{} },
	MechanicExile:         func() AbilityParams { return &ExileParams{} },
	MechanicReturnToHand:  func() AbilityParams { return &ReturnToHandParams{} },
	MechanicBuffStats:     func() AbilityParams { return &BuffStatsParams{} },
	MechanicGrantKeyword:  func() AbilityParams { return &GrantKeywordParams{} },
	MechanicTap:           func() AbilityParams { return &TapParams{} },
	MechanicUntap:         func() AbilityParams { return &UntapParams{} },
	MechanicCopy:          func() AbilityParams { return &CopyParams{} },
	MechanicCounter:       func() AbilityParams { return &CounterParams{} },
	MechanicAddMana:       func() AbilityParams { return &AddManaParams{} },
}

// Mechanics lists every known mechanic in a stable order
func Mechanics() []Mechanic {
	out := make([]Mechanic, 0, len(paramFactories))
	for m := range paramFactories {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// IsKnown reports whether the mechanic is supported
func (m Mechanic) IsKnown() bool {
	_, ok := paramFactories[m]
	return ok
}

// Ability is one line of rules text on a card
type Ability struct {
	Mechanic Mechanic
	Params   AbilityParams
	Text     string // flavored rules text shown to players
}

type abilityJSON struct {
	MechanicID   Mechanic        `json:"mechanicId"`
	Params       json.RawMessage `json:"params"`
	FlavoredText string          `json:"flavoredText"`
}

// MarshalJSON writes the ability in its wire shape
func (a Ability) MarshalJSON() ([]byte, error) {
	var params json.RawMessage = []byte("{}")
	if a.Params != nil {
		raw, err := json.Marshal(a.Params)
		if err != nil {
			return nil, err
		}
		params = raw
	}
	return json.Marshal(abilityJSON{MechanicID: a.Mechanic, Params: params, FlavoredText: a.Text})
}

// UnmarshalJSON decodes params into the struct registered for the mechanic
func (a *Ability) UnmarshalJSON(data []byte) error {
	var raw abilityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	newParams, ok := paramFactories[raw.MechanicID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMechanic, raw.MechanicID)
	}
	params := newParams()
	if len(raw.Params) > 0 && string(raw.Params) != "null" {
		if err := json.Unmarshal(raw.Params, params); err != nil {
			return fmt.Errorf("%w: %s params: %v", ErrInvalidCard, raw.MechanicID, err)
		}
	}
	if err := params.Validate(); err != nil {
		return err
	}
	*a = Ability{Mechanic: raw.MechanicID, Params: params, Text: raw.FlavoredText}
	return nil
}

// NewAbility builds an ability whose mechanic is taken from its params
func NewAbility(params AbilityParams, text string) Ability {
	return Ability{Mechanic: params.Mechanic(), Params: params, Text: text}
}

func checkAmount(m Mechanic, field string, v int) error {
	if v < 0 {
		return fmt.Errorf("%w: %s %s must not be negative", ErrInvalidCard, m, field)
	}
	return nil
}

// DealDamageParams deals damage to one target
type DealDamageParams struct {
	Target string `json:"target"`
	Amount int    `json:"amount"`
}

func (*DealDamageParams) Mechanic() Mechanic { return MechanicDealDamage }
func (p *DealDamageParams) Validate() error {
	return checkAmount(MechanicDealDamage, "amount", p.Amount)
}

// DealDamageAOEParams deals damage to every target in scope
type DealDamageAOEParams struct {
	Scope  string `json:"scope"` // e.g. "all creatures", "each opponent"
	Amount int    `json:"amount"`
}

func (*DealDamageAOEParams) Mechanic() Mechanic { return MechanicDealDamageAOE }
func (p *DealDamageAOEParams) Validate() error {
	return checkAmount(MechanicDealDamageAOE, "amount", p.Amount)
}

// HealParams prevents or removes damage from a target
type HealParams struct {
	Target string `json:"target"`
	Amount int    `json:"amount"`
}

func (*HealParams) Mechanic() Mechanic { return MechanicHeal }
func (p *HealParams) Validate() error  { return checkAmount(MechanicHeal, "amount", p.Amount) }

// GainLifeParams adds to a player's life total
type GainLifeParams struct {
	Player string `json:"player,omitempty"`
	Amount int    `json:"amount"`
}

func (*GainLifeParams) Mechanic() Mechanic { return MechanicGainLife }
func (p *GainLifeParams) Validate() error  { return checkAmount(MechanicGainLife, "amount", p.Amount) }

// DrawCardsParams draws cards
type DrawCardsParams struct {
	Player string `json:"player,omitempty"`
	Count  int    `json:"count"`
}

func (*DrawCardsParams) Mechanic() Mechanic { return MechanicDrawCards }
func (p *DrawCardsParams) Validate() error  { return checkAmount(MechanicDrawCards, "count", p.Count) }

// DiscardCardsParams forces a discard
type DiscardCardsParams struct {
	Player string `json:"player,omitempty"`
	Count  int    `json:"count"`
}

func (*DiscardCardsParams) Mechanic() Mechanic { return MechanicDiscardCards }
func (p *DiscardCardsParams) Validate() error {
	return checkAmount(MechanicDiscardCards, "count", p.Count)
}

// DestroyParams puts a target into its owner's graveyard
type DestroyParams struct {
	Target string `json:"target"`
}

func (*DestroyParams) Mechanic() Mechanic { return MechanicDestroy }
func (*DestroyParams) Validate() error    { return nil }

// ExileParams removes a target from the game
type ExileParams struct {
	Target string `json:"target"`
}

func (*ExileParams) Mechanic() Mechanic { return MechanicExile }
func (*ExileParams) Validate() error    { return nil }

// ReturnToHandParams bounces a target to its owner's hand
type ReturnToHandParams struct {
	Target string `json:"target"`
}

func (*ReturnToHandParams) Mechanic() Mechanic { return MechanicReturnToHand }
func (*ReturnToHandParams) Validate() error    { return nil }

// BuffStatsParams modifies power and toughness. Negative values are debuffs.
type BuffStatsParams struct {
	Target    string `json:"target"`
	Power     int    `json:"power"`
	Toughness int    `json:"toughness"`
	Duration  string `json:"duration,omitempty"` // e.g. "until end of turn"
}

func (*BuffStatsParams) Mechanic() Mechanic { return MechanicBuffStats }
func (*BuffStatsParams) Validate() error    { return nil }

// GrantKeywordParams gives a target a keyword
type GrantKeywordParams struct {
	Target  string  `json:"target"`
	Keyword Keyword `json:"keyword"`
}

func (*GrantKeywordParams) Mechanic() Mechanic { return MechanicGrantKeyword }
func (p *GrantKeywordParams) Validate() error {
	if !slices.Contains(Keywords, p.Keyword) {
		return fmt.Errorf("%w: %q", ErrUnknownKeyword, p.Keyword)
	}
	return nil
}

// TapParams taps a target
type TapParams struct {
	Target string `json:"target"`
}

func (*TapParams) Mechanic() Mechanic { return MechanicTap }
func (*TapParams) Validate() error    { return nil }

// UntapParams untaps a target
type UntapParams struct {
	Target string `json:"target"`
}

func (*UntapParams) Mechanic() Mechanic { return MechanicUntap }
func (*UntapParams) Validate() error    { return nil }

// CopyParams creates a copy of a target
type CopyParams struct {
	Target string `json:"target"`
}

func (*CopyParams) Mechanic() Mechanic { return MechanicCopy }
func (*CopyParams) Validate() error    { return nil }

// CounterParams counters a spell
type CounterParams struct {
	Target string `json:"target"`
}

func (*CounterParams) Mechanic() Mechanic { return MechanicCounter }
func (*CounterParams) Validate() error    { return nil }

// AddManaParams adds resources of one of the world's resource types
type AddManaParams struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

func (*AddManaParams) Mechanic() Mechanic { return MechanicAddMana }
func (p *AddManaParams) Validate() error  { return checkAmount(MechanicAddMana, "amount", p.Amount) }
