package model

// BotStrategyRandom picks uniformly from the available words
const BotStrategyRandom = "random"

// The dev bot is a single well-known player shared by every test session
const (
	BotSubject     = "bot-player-dev"
	BotDisplayName = "Bot Player"
)

// BotWords seed the pool of a test session on the bot's behalf
var BotWords = []string{"ancient ruins", "crystal caves", "shadow beasts"}
