// Package auth is the identity provider: it issues bearer tokens for guests
// and registered accounts and maps each token to a stable subject.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/vibedraft/internal/dependencies/clock"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// Account field limits
const (
	MinPasswordLength = 8
	MaxUsernameLength = 32
)

// Token is an issued bearer token
type Token struct {
	Value     string
	Identity  model.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service issues and validates bearer tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu     sync.RWMutex
	tokens map[string]*Token

	tokenDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		logger:        logger.With(slog.String("component", "auth")),
		tokens:        make(map[string]*Token),
		tokenDuration: cfg.TokenDuration,
	}
}

// Guest issues a token for a fresh anonymous subject
func (s *Service) Guest(ctx context.Context, displayName string) (*Token, error) {
	subject := model.GuestSubjectPrefix + generateID("")
	return s.issue(model.Identity{Subject: subject, Name: strings.TrimSpace(displayName)}), nil
}

// Register creates an account and issues a token for it
func (s *Service) Register(ctx context.Context, username, password, displayName, email string) (*Token, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateAccount(username, password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: string(hash),
		Subject:      model.UserSubjectPrefix + username,
		DisplayName:  displayName,
		Email:        strings.TrimSpace(email),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("username", username))
	return s.issue(accountIdentity(account)), nil
}

// Login checks a username and password and issues a token
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	account, err := s.storage.GetAccount(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.issue(accountIdentity(account)), nil
}

// Authenticate returns the identity a token was issued for
func (s *Service) Authenticate(token string) (model.Identity, error) {
	s.mu.RLock()
	t, ok := s.tokens[token]
	s.mu.RUnlock()

	if !ok {
		return model.Identity{}, model.ErrInvalidToken
	}

	if s.clock.Now().After(t.ExpiresAt) {
		s.Revoke(token)
		return model.Identity{}, model.ErrInvalidToken
	}

	return t.Identity, nil
}

// Revoke invalidates a token
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CleanExpiredTokens removes expired tokens (call periodically)
func (s *Service) CleanExpiredTokens() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, t := range s.tokens {
		if now.After(t.ExpiresAt) {
			delete(s.tokens, value)
		}
	}
}

func (s *Service) issue(identity model.Identity) *Token {
	now := s.clock.Now()
	t := &Token{
		Value:     generateID("tok_"),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenDuration),
	}

	s.mu.Lock()
	s.tokens[t.Value] = t
	s.mu.Unlock()

	return t
}

func accountIdentity(a *model.Account) model.Identity {
	return model.Identity{Subject: a.Subject, Name: a.DisplayName, Email: a.Email}
}

func validateAccount(username, password string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", model.ErrInvalidAccount)
	case len(username) > MaxUsernameLength:
		return fmt.Errorf("%w: username must be at most %d characters", model.ErrInvalidAccount, MaxUsernameLength)
	case strings.ContainsAny(username, " \t:"):
		return fmt.Errorf("%w: username must not contain spaces or colons", model.ErrInvalidAccount)
	case len(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidAccount, MinPasswordLength)
	}
	return nil
}

// generateID generates an unguessable random id with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
