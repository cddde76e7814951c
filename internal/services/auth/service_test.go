package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage/memory"
	"github.com/mcoot/vibedraft/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

// Guest tests

func (s *ServiceSuite) TestGuestIssuesGuestSubject() {
	token, err := s.service.Guest(s.ctx, "  Alice ")
	s.Require().NoError(err)

	s.NotEmpty(token.Value)
	s.True(strings.HasPrefix(token.Identity.Subject, model.GuestSubjectPrefix))
	s.Equal("Alice", token.Identity.Name)
}

func (s *ServiceSuite) TestGuestsGetDistinctSubjects() {
	a, _ := s.service.Guest(s.ctx, "Alice")
	b, _ := s.service.Guest(s.ctx, "Alice")

	s.NotEqual(a.Identity.Subject, b.Identity.Subject)
	s.NotEqual(a.Value, b.Value)
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	token, err := s.service.Register(s.ctx, "Alice", "password123", "Alice A", "alice@example.com")
	s.Require().NoError(err)

	s.Equal("user:alice", token.Identity.Subject)
	s.Equal("Alice A", token.Identity.Name)
	s.Equal("alice@example.com", token.Identity.Email)
}

func (s *ServiceSuite) TestRegisterPersistsHashedPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice", "")

	account, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("user:alice", account.Subject)
	s.NotEmpty(account.PasswordHash)
	s.NotEqual("password123", account.PasswordHash)
}

func (s *ServiceSuite) TestRegisterDefaultsDisplayName() {
	token, err := s.service.Register(s.ctx, "alice", "password123", " ", "")
	s.Require().NoError(err)

	s.Equal("alice", token.Identity.Name)
}

func (s *ServiceSuite) TestRegisterFailsIfUsernameExists() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice", "")

	_, err := s.service.Register(s.ctx, "ALICE", "different1", "Alice2", "")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterValidatesInput() {
	for name, tc := range map[string]struct{ username, password string }{
		"empty username":  {"", "password123"},
		"long username":   {strings.Repeat("a", MaxUsernameLength+1), "password123"},
		"colon":           {"a:b", "password123"},
		"short password":  {"alice", "short"},
		"spaced username": {"al ice", "password123"},
	} {
		_, err := s.service.Register(s.ctx, tc.username, tc.password, "", "")
		s.ErrorIs(err, model.ErrInvalidAccount, name)
		s.Equal(model.KindValidation, model.KindOf(err), name)
	}
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice", "")

	token, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.Equal("user:alice", token.Identity.Subject)
	s.Equal("Alice", token.Identity.Name)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice", "")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	s.Equal(model.KindUnauthenticated, model.KindOf(err))
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	token, _ := s.service.Guest(s.ctx, "Alice")

	identity, err := s.service.Authenticate(token.Value)
	s.Require().NoError(err)
	s.Equal(token.Identity, identity)
}

func (s *ServiceSuite) TestAuthenticateFailsWithInvalidToken() {
	_, err := s.service.Authenticate("invalid_token")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestAuthenticateFailsWhenExpired() {
	token, _ := s.service.Guest(s.ctx, "Alice")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.Authenticate(token.Value)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestLoginAgainKeepsSubject() {
	first, _ := s.service.Register(s.ctx, "alice", "password123", "Alice", "")
	second, _ := s.service.Login(s.ctx, "alice", "password123")

	s.NotEqual(first.Value, second.Value)
	s.Equal(first.Identity.Subject, second.Identity.Subject)
}

// Revoke tests

func (s *ServiceSuite) TestRevokeRemovesToken() {
	token, _ := s.service.Guest(s.ctx, "Alice")

	s.service.Revoke(token.Value)

	_, err := s.service.Authenticate(token.Value)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestRevokeNoopForUnknownToken() {
	s.service.Revoke("unknown_token")
}

// CleanExpiredTokens tests

func (s *ServiceSuite) TestCleanExpiredTokensRemovesExpired() {
	old, _ := s.service.Guest(s.ctx, "Alice")
	s.clock.Advance(25 * time.Hour)
	fresh, _ := s.service.Guest(s.ctx, "Bob")

	s.service.CleanExpiredTokens()

	_, err := s.service.Authenticate(old.Value)
	s.ErrorIs(err, model.ErrInvalidToken)
	_, err = s.service.Authenticate(fresh.Value)
	s.NoError(err)
}
