package redis

import (
	"fmt"

	"github.com/mcoot/vibedraft/internal/model"
)

// Key prefix for all vibedraft data
const keyPrefix = "vibedraft"

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// subjectIndexKey maps an auth subject to its player id
func subjectIndexKey(subject string) string {
	return fmt.Sprintf("%s:idx:subject:%s", keyPrefix, subject)
}

func accountKey(username string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

func draftKey(id model.SessionID) string {
	return fmt.Sprintf("%s:draft:%s", keyPrefix, id)
}

// sessionsByStatusKey returns the SET of session keys with the given status
func sessionsByStatusKey(status model.SessionStatus) string {
	return fmt.Sprintf("%s:idx:sessions_by_status:%s", keyPrefix, status)
}

// sessionsForPlayerKey returns the SET of session keys a player is seated in
func sessionsForPlayerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:sessions_for_player:%s", keyPrefix, id)
}

func cardKey(id model.CardID) string {
	return fmt.Sprintf("%s:card:%s", keyPrefix, id)
}

// cardsForSessionKey returns the SET of card keys in a session
func cardsForSessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:idx:cards_for_session:%s", keyPrefix, id)
}

// allCardsKey returns the SET of every card key
func allCardsKey() string {
	return fmt.Sprintf("%s:idx:cards", keyPrefix)
}

func imageKey(id model.ImageID) string {
	return fmt.Sprintf("%s:image:%s", keyPrefix, id)
}
