package bot

import (
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/mcoot/vibedraft/internal/model"
)

// RandomStrategy picks a uniformly random available word
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseWord returns a random word from the pool
func (s *RandomStrategy) ChooseWord(pool *model.DraftPool) (string, error) {
	word, ok := random.Choice(s.random, pool.Words)
	if !ok {
		return "", model.ErrDraftComplete
	}
	return word, nil
}
