package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string `env:"VIBEDRAFT_SERVER" envDefault:"http://localhost:8080"`
	Token     string `env:"VIBEDRAFT_TOKEN"`
	TokenFile string `env:"VIBEDRAFT_TOKEN_FILE"`
	Output    string `env:"VIBEDRAFT_OUTPUT" envDefault:"text"`
	// Generation calls can take a while on a real model
	Timeout time.Duration `env:"VIBEDRAFT_TIMEOUT" envDefault:"2m"`
}

// DefaultConfig returns a Config populated from the environment
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		// Only a malformed timeout can fail; fall back to the defaults
		cfg = &Config{ServerURL: "http://localhost:8080", Output: "text", Timeout: 2 * time.Minute}
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return cfg
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken removes the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Validate rejects settings the commands cannot honour
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibedraft/token"
	}
	return filepath.Join(home, ".vibedraft", "token")
}
