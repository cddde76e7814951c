package storage

import (
	"cmp"
	"slices"

	"github.com/mcoot/vibedraft/internal/model"
)

// SortSessions orders sessions newest first, ties broken by ID
func SortSessions(sessions []*model.Session) {
	slices.SortFunc(sessions, func(a, b *model.Session) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortCards orders cards oldest first, ties broken by ID
func SortCards(cards []*model.Card) {
	slices.SortFunc(cards, func(a, b *model.Card) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
