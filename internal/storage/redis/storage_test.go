package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	cfg.SessionTTL = time.Hour
	cfg.CardTTL = time.Hour
	cfg.ImageTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestGuestPlayerTTL() {
	_, err := s.storage.EnsurePlayer(s.Ctx, &model.Player{ID: "guest-1", AuthSubject: "guest:abc"})
	s.Require().NoError(err)
	_, err = s.storage.EnsurePlayer(s.Ctx, &model.Player{ID: "user-1", AuthSubject: "user:alice"})
	s.Require().NoError(err)

	s.True(s.mini.TTL(playerKey("guest-1")) > 0, "Guest player should have TTL")
	s.True(s.mini.TTL(subjectIndexKey("guest:abc")) > 0, "Guest subject index should have TTL")
	s.Equal(time.Duration(0), s.mini.TTL(playerKey("user-1")), "Registered player should not have TTL")
}

func (s *StorageSuite) TestSessionTTL() {
	s.Require().NoError(s.storage.CreateSession(s.Ctx, model.NewSession("s1", "p1", time.Now()), model.NewDraftPool("s1")))

	s.True(s.mini.TTL(sessionKey("s1")) > 0)
	s.True(s.mini.TTL(draftKey("s1")) > 0)
}

func (s *StorageSuite) TestUpdateSessionMaintainsIndexes() {
	s.Require().NoError(s.storage.CreateSession(s.Ctx, model.NewSession("s1", "p1", time.Now()), model.NewDraftPool("s1")))

	_, err := s.storage.UpdateSession(s.Ctx, "s1", func(session *model.Session) error {
		return session.Join("p2")
	})
	s.Require().NoError(err)

	// Redis drops a set with its last member
	s.False(s.mini.Exists(sessionsByStatusKey(model.StatusWaiting)))

	forP2, err := s.mini.Members(sessionsForPlayerKey("p2"))
	s.Require().NoError(err)
	s.Equal([]string{sessionKey("s1")}, forP2)
}

func (s *StorageSuite) TestCreateSessionRejectsDuplicateID() {
	s.Require().NoError(s.storage.CreateSession(s.Ctx, model.NewSession("s1", "p1", time.Now()), model.NewDraftPool("s1")))

	err := s.storage.CreateSession(s.Ctx, model.NewSession("s1", "p9", time.Now()), model.NewDraftPool("s1"))
	s.ErrorIs(err, model.ErrConcurrentUpdate)
}

func (s *StorageSuite) TestListSessionsSkipsExpired() {
	s.Require().NoError(s.storage.CreateSession(s.Ctx, model.NewSession("s1", "p1", time.Now()), model.NewDraftPool("s1")))
	s.mini.FastForward(2 * time.Hour)

	sessions, err := s.storage.ListSessionsByStatus(s.Ctx, model.StatusWaiting)
	s.Require().NoError(err)
	s.Empty(sessions)
}
