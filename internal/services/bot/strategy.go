package bot

import "github.com/mcoot/vibedraft/internal/model"

// Strategy defines how a bot chooses words during the draft
type Strategy interface {
	// ChooseWord selects a word from the pool's available words
	ChooseWord(pool *model.DraftPool) (string, error)
}
