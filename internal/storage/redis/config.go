package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxTxRetries bounds optimistic transaction retries before an update
	// gives up with a conflict
	MaxTxRetries int

	// TTL settings for different entity types. Zero means no expiry.
	GuestPlayerTTL time.Duration
	SessionTTL     time.Duration
	CardTTL        time.Duration
	ImageTTL       time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		MaxTxRetries:   50,
		GuestPlayerTTL: 7 * 24 * time.Hour,
		SessionTTL:     7 * 24 * time.Hour,
		CardTTL:        7 * 24 * time.Hour,
		ImageTTL:       7 * 24 * time.Hour,
	}
}
