package model

import (
	"slices"
	"strings"
)

// Draft limits
const (
	MaxWordLength     = 50
	MaxWordsPerSubmit = 5
	MinPoolSize       = 4
	PicksPerPlayer    = 3
)

// DraftState is derived from the pool contents, never stored
type DraftState string

const (
	DraftEmpty      DraftState = "EMPTY"
	DraftCollecting DraftState = "COLLECTING"
	DraftPicking    DraftState = "PICKING"
	DraftComplete   DraftState = "COMPLETE"
)

// DraftPool is the shared word pool of a session
type DraftPool struct {
	SessionID     SessionID `json:"sessionId"`
	Words         []string  `json:"words"` // still available
	Player1Picks  []string  `json:"player1Picks"`
	Player2Picks  []string  `json:"player2Picks"`
	CurrentPicker PlayerID  `json:"currentPicker,omitempty"`
	PicksStarted  bool      `json:"picksStarted"`
	Version       int64     `json:"version"`
}

// NewDraftPool creates the empty pool that accompanies a new session
func NewDraftPool(id SessionID) *DraftPool {
	return &DraftPool{
		SessionID:    id,
		Words:        []string{},
		Player1Picks: []string{},
		Player2Picks: []string{},
	}
}

// Clone returns a deep copy of the pool
func (p *DraftPool) Clone() *DraftPool {
	c := *p
	c.Words = slices.Clone(p.Words)
	c.Player1Picks = slices.Clone(p.Player1Picks)
	c.Player2Picks = slices.Clone(p.Player2Picks)
	return &c
}

// State derives the draft state
func (p *DraftPool) State() DraftState {
	switch {
	case p.PicksStarted && p.CurrentPicker != "":
		return DraftPicking
	case p.PicksStarted:
		return DraftComplete
	case len(p.Words) == 0:
		return DraftEmpty
	default:
		return DraftCollecting
	}
}

// PicksFor returns the words claimed by the given seat
func (p *DraftPool) PicksFor(s *Session, id PlayerID) []string {
	switch id {
	case s.Player1:
		return p.Player1Picks
	case s.Player2:
		return p.Player2Picks
	default:
		return nil
	}
}

func (p *DraftPool) isComplete() bool {
	return len(p.Words) == 0 ||
		(len(p.Player1Picks) >= PicksPerPlayer && len(p.Player2Picks) >= PicksPerPlayer)
}

// NormalizeWords trims input, drops blank or overlong entries and caps the
// result at MaxWordsPerSubmit
func NormalizeWords(words []string) []string {
	accepted := make([]string, 0, MaxWordsPerSubmit)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || len([]rune(w)) > MaxWordLength {
			continue
		}
		accepted = append(accepted, w)
		if len(accepted) == MaxWordsPerSubmit {
			break
		}
	}
	return accepted
}

// SubmitWords appends a participant's words to the pool and returns how many
// were accepted. Nothing is changed on error.
func SubmitWords(s *Session, p *DraftPool, participant PlayerID, words []string) (int, error) {
	if s.Phase != PhaseDraft {
		return 0, ErrWrongPhase
	}
	if !s.IsParticipant(participant) {
		return 0, ErrNotParticipant
	}
	if p.PicksStarted {
		return 0, ErrPickingStarted
	}
	accepted := NormalizeWords(words)
	if len(accepted) == 0 {
		return 0, ErrNoValidWords
	}
	p.Words = append(p.Words, accepted...)
	return len(accepted), nil
}

// StartPicking shuffles the pool and hands the first pick to player 1.
// shuffle must permute the slice in place.
func StartPicking(s *Session, p *DraftPool, shuffle func([]string)) error {
	if s.Phase != PhaseDraft {
		return ErrWrongPhase
	}
	if p.PicksStarted {
		return ErrPickingStarted
	}
	if len(p.Words) < MinPoolSize {
		return ErrPoolTooSmall
	}
	shuffle(p.Words)
	p.PicksStarted = true
	p.CurrentPicker = s.Player1
	return nil
}

// PickResult reports the outcome of a successful pick
type PickResult struct {
	Picked    string `json:"picked"`
	Complete  bool   `json:"complete"`
	Remaining int    `json:"remaining"`
	// GenerationTriggered is true only for the pick that moved the session
	// into the generating phase
	GenerationTriggered bool `json:"generationTriggered"`
}

// PickWord claims one occurrence of word for the participant and passes the
// turn. When the draft completes the session moves to generating in the same
// step. Nothing is changed on error.
func PickWord(s *Session, p *DraftPool, participant PlayerID, word string) (PickResult, error) {
	if p.CurrentPicker == "" {
		if p.PicksStarted {
			return PickResult{}, ErrDraftComplete
		}
		return PickResult{}, ErrPickingNotStarted
	}
	if p.CurrentPicker != participant {
		return PickResult{}, ErrNotYourTurn
	}
	idx := slices.Index(p.Words, word)
	if idx < 0 {
		return PickResult{}, ErrWordNotInPool
	}
	if s.Phase != PhaseDraft {
		return PickResult{}, ErrWrongPhase
	}

	p.Words = slices.Delete(p.Words, idx, idx+1)
	if participant == s.Player1 {
		p.Player1Picks = append(p.Player1Picks, word)
		p.CurrentPicker = s.Player2
	} else {
		p.Player2Picks = append(p.Player2Picks, word)
		p.CurrentPicker = s.Player1
	}

	result := PickResult{Picked: word, Remaining: len(p.Words)}
	if p.isComplete() {
		p.CurrentPicker = ""
		if err := s.SetPhase(PhaseGenerating); err != nil {
			return PickResult{}, err
		}
		result.Complete = true
		result.GenerationTriggered = true
	}
	return result, nil
}
