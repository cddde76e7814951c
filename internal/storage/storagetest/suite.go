// Package storagetest holds the behaviour every storage backend must share.
// Backend test suites embed Suite and assign Storage in SetupTest.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// Suite is the shared storage conformance suite
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// newDraftingSession stores a session with both seats filled and the given
// words in its pool
func (s *Suite) newDraftingSession(id model.SessionID, words ...string) {
	session := model.NewSession(id, "p1", baseTime)
	s.Require().NoError(session.Join("p2"))
	pool := model.NewDraftPool(id)
	pool.Words = append(pool.Words, words...)
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), session, pool))
}

func (s *Suite) newCard(id model.CardID, sessionID model.SessionID, owner model.PlayerID, loc model.Location, offset time.Duration) *model.Card {
	return &model.Card{
		ID:        id,
		SessionID: sessionID,
		OwnerID:   owner,
		Name:      "Card " + string(id),
		Type:      model.CardSorcery,
		Cost:      "1 Ash",
		Abilities: []model.Ability{
			model.NewAbility(&model.DealDamageParams{Target: "any", Amount: 2}, "Deal 2 damage"),
		},
		Location:  loc,
		CreatedAt: baseTime.Add(offset),
	}
}

// Player tests

func (s *Suite) TestEnsurePlayerCreatesOnce() {
	first, err := s.Storage.EnsurePlayer(s.ctx(), &model.Player{ID: "p1", AuthSubject: "guest:abc", DisplayName: "Alice", CreatedAt: baseTime})
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), first.ID)

	second, err := s.Storage.EnsurePlayer(s.ctx(), &model.Player{ID: "p2", AuthSubject: "guest:abc", DisplayName: "Other"})
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), second.ID)
	s.Equal("Alice", second.DisplayName)

	_, err = s.Storage.GetPlayer(s.ctx(), "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestEnsurePlayerConcurrentSameSubject() {
	var wg sync.WaitGroup
	ids := make([]model.PlayerID, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Storage.EnsurePlayer(s.ctx(), &model.Player{
				ID:          model.PlayerID(fmt.Sprintf("p%d", i)),
				AuthSubject: "user:race",
				CreatedAt:   baseTime,
			})
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	s.NotEmpty(ids[0])
}

func (s *Suite) TestGetPlayerBySubject() {
	_, err := s.Storage.EnsurePlayer(s.ctx(), &model.Player{ID: "p1", AuthSubject: "user:alice", Email: "alice@example.com"})
	s.Require().NoError(err)

	p, err := s.Storage.GetPlayerBySubject(s.ctx(), "user:alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), p.ID)
	s.Equal("alice@example.com", p.Email)

	_, err = s.Storage.GetPlayerBySubject(s.ctx(), "user:nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Account tests

func (s *Suite) TestCreateAccountRejectsDuplicateUsername() {
	account := &model.Account{Username: "alice", PasswordHash: "hash", Subject: "user:alice", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateAccount(s.ctx(), account))

	err := s.Storage.CreateAccount(s.ctx(), &model.Account{Username: "alice", PasswordHash: "other"})
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.Storage.GetAccount(s.ctx(), "alice")
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)

	_, err = s.Storage.GetAccount(s.ctx(), "bob")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Session tests

func (s *Suite) TestCreateAndGetSession() {
	session := model.NewSession("s1", "p1", baseTime)
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), session, model.NewDraftPool("s1")))

	got, err := s.Storage.GetSession(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.Player1)
	s.Equal(model.PhaseWaiting, got.Phase)
	s.Equal(model.StartingLife, got.Player1Life)

	pool, err := s.Storage.GetDraftPool(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Equal(model.DraftEmpty, pool.State())
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.Storage.GetSession(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.Storage.GetDraftPool(s.ctx(), "missing")
	s.Error(err)
}

func (s *Suite) TestUpdateSessionIncrementsVersion() {
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("s1", "p1", baseTime), model.NewDraftPool("s1")))

	updated, err := s.Storage.UpdateSession(s.ctx(), "s1", func(session *model.Session) error {
		return session.Join("p2")
	})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Version)

	got, err := s.Storage.GetSession(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), got.Player2)
	s.Equal(int64(1), got.Version)
}

func (s *Suite) TestUpdateSessionErrorWritesNothing() {
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("s1", "p1", baseTime), model.NewDraftPool("s1")))

	_, err := s.Storage.UpdateSession(s.ctx(), "s1", func(session *model.Session) error {
		session.Player2 = "p2"
		return model.ErrSelfJoin
	})
	s.ErrorIs(err, model.ErrSelfJoin)

	got, err := s.Storage.GetSession(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Empty(got.Player2)
	s.Equal(int64(0), got.Version)
}

func (s *Suite) TestUpdateSessionNotFound() {
	_, err := s.Storage.UpdateSession(s.ctx(), "missing", func(*model.Session) error { return nil })
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListSessionsByStatusFollowsUpdates() {
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("old", "p1", baseTime), model.NewDraftPool("old")))
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("new", "p3", baseTime.Add(time.Minute)), model.NewDraftPool("new")))

	waiting, err := s.Storage.ListSessionsByStatus(s.ctx(), model.StatusWaiting)
	s.Require().NoError(err)
	s.Require().Len(waiting, 2)
	s.Equal(model.SessionID("new"), waiting[0].ID)

	_, err = s.Storage.UpdateSession(s.ctx(), "old", func(session *model.Session) error {
		return session.Join("p2")
	})
	s.Require().NoError(err)

	waiting, err = s.Storage.ListSessionsByStatus(s.ctx(), model.StatusWaiting)
	s.Require().NoError(err)
	s.Require().Len(waiting, 1)
	s.Equal(model.SessionID("new"), waiting[0].ID)

	active, err := s.Storage.ListSessionsByStatus(s.ctx(), model.StatusActive)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(model.SessionID("old"), active[0].ID)
}

func (s *Suite) TestListSessionsForPlayer() {
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("s1", "p1", baseTime), model.NewDraftPool("s1")))
	s.Require().NoError(s.Storage.CreateSession(s.ctx(), model.NewSession("s2", "p3", baseTime.Add(time.Minute)), model.NewDraftPool("s2")))

	_, err := s.Storage.UpdateSession(s.ctx(), "s2", func(session *model.Session) error {
		return session.Join("p1")
	})
	s.Require().NoError(err)

	mine, err := s.Storage.ListSessionsForPlayer(s.ctx(), "p1")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(model.SessionID("s2"), mine[0].ID)
	s.Equal(model.SessionID("s1"), mine[1].ID)

	none, err := s.Storage.ListSessionsForPlayer(s.ctx(), "p9")
	s.Require().NoError(err)
	s.Empty(none)
}

// Draft tests

func (s *Suite) TestUpdateDraftWritesBoth() {
	s.newDraftingSession("s1", "a", "b", "c", "d")

	session, pool, err := s.Storage.UpdateDraft(s.ctx(), "s1", func(session *model.Session, pool *model.DraftPool) error {
		return model.StartPicking(session, pool, func([]string) {})
	})
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), pool.CurrentPicker)
	s.Equal(int64(1), pool.Version)

	stored, err := s.Storage.GetDraftPool(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Equal(model.DraftPicking, stored.State())
	s.Equal(int64(1), session.Version)
}

func (s *Suite) TestUpdateDraftErrorWritesNothing() {
	s.newDraftingSession("s1", "a", "b", "c", "d")
	s.Require().NoError(s.startPicking("s1"))

	_, _, err := s.Storage.UpdateDraft(s.ctx(), "s1", func(session *model.Session, pool *model.DraftPool) error {
		_, err := model.PickWord(session, pool, "p2", "a")
		return err
	})
	s.ErrorIs(err, model.ErrNotYourTurn)

	pool, err := s.Storage.GetDraftPool(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Len(pool.Words, 4)
	s.Equal(model.PlayerID("p1"), pool.CurrentPicker)
}

func (s *Suite) TestFinalPickFlipsSessionInSameUpdate() {
	s.newDraftingSession("s1", "a", "b", "c", "d")
	s.Require().NoError(s.startPicking("s1"))

	var last model.PickResult
	for _, step := range []struct {
		player model.PlayerID
		word   string
	}{{"p1", "a"}, {"p2", "b"}, {"p1", "c"}, {"p2", "d"}} {
		_, _, err := s.Storage.UpdateDraft(s.ctx(), "s1", func(session *model.Session, pool *model.DraftPool) error {
			var err error
			last, err = model.PickWord(session, pool, step.player, step.word)
			return err
		})
		s.Require().NoError(err)
	}

	s.True(last.GenerationTriggered)
	session, err := s.Storage.GetSession(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Equal(model.PhaseGenerating, session.Phase)
}

func (s *Suite) TestConcurrentSubmitsLoseNoWords() {
	s.newDraftingSession("s1")

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := model.PlayerID("p1")
			if i%2 == 1 {
				player = "p2"
			}
			for {
				_, _, err := s.Storage.UpdateDraft(s.ctx(), "s1", func(session *model.Session, pool *model.DraftPool) error {
					_, err := model.SubmitWords(session, pool, player, []string{fmt.Sprintf("word-%d", i)})
					return err
				})
				if !errors.Is(err, model.ErrConcurrentUpdate) {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	pool, err := s.Storage.GetDraftPool(s.ctx(), "s1")
	s.Require().NoError(err)
	s.Len(pool.Words, 10)
}

func (s *Suite) TestConcurrentPicksTriggerGenerationOnce() {
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	s.newDraftingSession("s1", words...)
	s.Require().NoError(s.startPicking("s1"))

	var (
		wg        sync.WaitGroup
		triggered atomic.Int32
		picked    atomic.Int32
	)
	for _, player := range []model.PlayerID{"p1", "p2"} {
		for range 4 {
			wg.Add(1)
			go func(player model.PlayerID) {
				defer wg.Done()
				for {
					current, err := s.Storage.GetDraftPool(s.ctx(), "s1")
					if err != nil || current.State() == model.DraftComplete {
						return
					}
					if len(current.Words) == 0 {
						return
					}
					word := current.Words[0]
					var res model.PickResult
					_, _, err = s.Storage.UpdateDraft(s.ctx(), "s1", func(session *model.Session, pool *model.DraftPool) error {
						var err error
						res, err = model.PickWord(session, pool, player, word)
						return err
					})
					if err != nil {
						continue
					}
					picked.Add(1)
					if res.GenerationTriggered {
						triggered.Add(1)
					}
				}
			}(player)
		}
	}
	wg.Wait()

	pool, err := s.Storage.GetDraftPool(s.ctx(), "s1")
	s.Require().NoError(err)
	session, err := s.Storage.GetSession(s.ctx(), "s1")
	s.Require().NoError(err)

	s.Equal(int32(1), triggered.Load())
	s.Equal(int32(6), picked.Load())
	s.Len(pool.Player1Picks, 3)
	s.Len(pool.Player2Picks, 3)
	s.Len(pool.Words, len(words)-6)
	s.ElementsMatch(words, append(append(append([]string{}, pool.Words...), pool.Player1Picks...), pool.Player2Picks...))
	s.Equal(model.PhaseGenerating, session.Phase)
}

func (s *Suite) startPicking(id model.SessionID) error {
	_, _, err := s.Storage.UpdateDraft(s.ctx(), id, func(session *model.Session, pool *model.DraftPool) error {
		return model.StartPicking(session, pool, func([]string) {})
	})
	return err
}

// Card tests

func (s *Suite) TestSaveAndGetCard() {
	power, toughness := 2, 3
	card := s.newCard("c1", "s1", "p1", model.LocationHand, 0)
	card.Type = model.CardCreature
	card.Power, card.Toughness = &power, &toughness
	s.Require().NoError(s.Storage.SaveCard(s.ctx(), card))

	got, err := s.Storage.GetCard(s.ctx(), "c1")
	s.Require().NoError(err)
	s.Equal(card.Name, got.Name)
	s.Equal(card.Abilities, got.Abilities)
	s.Equal(3, *got.Toughness)
	s.False(got.Tapped)

	_, err = s.Storage.GetCard(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *Suite) TestListCardsFilters() {
	for _, c := range []*model.Card{
		s.newCard("c1", "s1", "p1", model.LocationHand, 0),
		s.newCard("c2", "s1", "p1", model.LocationField, time.Second),
		s.newCard("c3", "s1", "p2", model.LocationField, 2*time.Second),
		s.newCard("c4", "s2", "p1", model.LocationHand, 3*time.Second),
	} {
		s.Require().NoError(s.Storage.SaveCard(s.ctx(), c))
	}

	hand, err := s.Storage.ListCards(s.ctx(), model.CardFilter{SessionID: "s1", OwnerID: "p1", Location: model.LocationHand})
	s.Require().NoError(err)
	s.Require().Len(hand, 1)
	s.Equal(model.CardID("c1"), hand[0].ID)

	field, err := s.Storage.ListCards(s.ctx(), model.CardFilter{SessionID: "s1", Location: model.LocationField})
	s.Require().NoError(err)
	s.Require().Len(field, 2)
	s.Equal(model.CardID("c2"), field[0].ID)
	s.Equal(model.CardID("c3"), field[1].ID)
}

func (s *Suite) TestUpdateCard() {
	s.Require().NoError(s.Storage.SaveCard(s.ctx(), s.newCard("c1", "s1", "p1", model.LocationHand, 0)))

	updated, err := s.Storage.UpdateCard(s.ctx(), "c1", func(card *model.Card) error {
		card.ImageRef = "img1"
		return nil
	})
	s.Require().NoError(err)
	s.Equal(model.ImageID("img1"), updated.ImageRef)

	got, err := s.Storage.GetCard(s.ctx(), "c1")
	s.Require().NoError(err)
	s.Equal(model.ImageID("img1"), got.ImageRef)

	_, err = s.Storage.UpdateCard(s.ctx(), "missing", func(*model.Card) error { return nil })
	s.ErrorIs(err, model.ErrCardNotFound)
}

// Image tests

func (s *Suite) TestSaveAndGetImage() {
	image := &model.Image{ID: "img1", CardID: "c1", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}, CreatedAt: baseTime}
	s.Require().NoError(s.Storage.SaveImage(s.ctx(), image))

	got, err := s.Storage.GetImage(s.ctx(), "img1")
	s.Require().NoError(err)
	s.Equal("image/png", got.ContentType)
	s.Equal(image.Data, got.Data)

	_, err = s.Storage.GetImage(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrImageNotFound)
}
