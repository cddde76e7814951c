package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DraftSuite struct {
	suite.Suite
	session *Session
	pool    *DraftPool
}

func TestDraftSuite(t *testing.T) {
	suite.Run(t, new(DraftSuite))
}

func noShuffle([]string) {}

func (s *DraftSuite) SetupTest() {
	s.session = NewSession("s1", "p1", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.session.Join("p2"))
	s.pool = NewDraftPool("s1")
}

func (s *DraftSuite) seed(words ...string) {
	s.pool.Words = append(s.pool.Words, words...)
}

func (s *DraftSuite) start() {
	s.Require().NoError(StartPicking(s.session, s.pool, noShuffle))
}

func (s *DraftSuite) pick(player PlayerID, word string) PickResult {
	res, err := PickWord(s.session, s.pool, player, word)
	s.Require().NoError(err)
	return res
}

// State tests

func (s *DraftSuite) TestStateProgression() {
	s.Equal(DraftEmpty, s.pool.State())

	s.seed("a", "b", "c", "d")
	s.Equal(DraftCollecting, s.pool.State())

	s.start()
	s.Equal(DraftPicking, s.pool.State())

	for _, step := range []struct {
		player PlayerID
		word   string
	}{{"p1", "a"}, {"p2", "b"}, {"p1", "c"}, {"p2", "d"}} {
		s.pick(step.player, step.word)
	}
	s.Equal(DraftComplete, s.pool.State())
}

// SubmitWords tests

func (s *DraftSuite) TestSubmitWordsFiltersInput() {
	n, err := SubmitWords(s.session, s.pool, "p1", []string{"  ", "ok", strings.Repeat("x", 60)})
	s.Require().NoError(err)

	s.Equal(1, n)
	s.Equal([]string{"ok"}, s.pool.Words)
}

func (s *DraftSuite) TestSubmitWordsTrimsAndCaps() {
	n, err := SubmitWords(s.session, s.pool, "p2", []string{" one ", "two", "three", "four", "five", "six"})
	s.Require().NoError(err)

	s.Equal(MaxWordsPerSubmit, n)
	s.Equal([]string{"one", "two", "three", "four", "five"}, s.pool.Words)
}

func (s *DraftSuite) TestSubmitWordsAcceptsExactlyFiftyCharacters() {
	n, err := SubmitWords(s.session, s.pool, "p1", []string{strings.Repeat("y", MaxWordLength)})
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *DraftSuite) TestSubmitWordsRejectsNothingValid() {
	s.seed("existing")

	_, err := SubmitWords(s.session, s.pool, "p1", []string{"", "   ", strings.Repeat("z", 51)})

	s.ErrorIs(err, ErrNoValidWords)
	s.Equal(KindValidation, KindOf(err))
	s.Equal([]string{"existing"}, s.pool.Words)
}

func (s *DraftSuite) TestSubmitWordsRequiresDraftPhase() {
	waiting := NewSession("s2", "p1", time.Now())

	_, err := SubmitWords(waiting, NewDraftPool("s2"), "p1", []string{"ok"})

	s.ErrorIs(err, ErrWrongPhase)
	s.Equal(KindPrecondition, KindOf(err))
}

func (s *DraftSuite) TestSubmitWordsRequiresParticipant() {
	_, err := SubmitWords(s.session, s.pool, "stranger", []string{"ok"})
	s.ErrorIs(err, ErrNotParticipant)
}

func (s *DraftSuite) TestSubmitWordsAfterPickingStartedFails() {
	s.seed("a", "b", "c", "d")
	s.start()

	_, err := SubmitWords(s.session, s.pool, "p1", []string{"late"})

	s.ErrorIs(err, ErrPickingStarted)
	s.Len(s.pool.Words, 4)
}

// StartPicking tests

func (s *DraftSuite) TestStartPickingWithTooFewWordsFails() {
	s.seed("a", "b", "c")

	err := StartPicking(s.session, s.pool, noShuffle)

	s.ErrorIs(err, ErrPoolTooSmall)
	s.Equal(KindPrecondition, KindOf(err))
	s.Empty(s.pool.CurrentPicker)
	s.False(s.pool.PicksStarted)
}

func (s *DraftSuite) TestStartPickingShufflesAndSetsPlayer1() {
	s.seed("a", "b", "c", "d")

	err := StartPicking(s.session, s.pool, func(words []string) {
		words[0], words[3] = words[3], words[0]
	})
	s.Require().NoError(err)

	s.Equal([]string{"d", "b", "c", "a"}, s.pool.Words)
	s.Equal(PlayerID("p1"), s.pool.CurrentPicker)
}

func (s *DraftSuite) TestStartPickingTwiceFails() {
	s.seed("a", "b", "c", "d")
	s.start()

	err := StartPicking(s.session, s.pool, noShuffle)
	s.ErrorIs(err, ErrPickingStarted)
}

// PickWord tests

func (s *DraftSuite) TestPickExampleSequence() {
	s.seed("a", "b", "c", "d")
	s.start()

	res := s.pick("p1", "a")
	s.Equal(PickResult{Picked: "a", Remaining: 3}, res)
	s.Equal(PlayerID("p2"), s.pool.CurrentPicker)

	s.pick("p2", "b")
	s.pick("p1", "c")
	res = s.pick("p2", "d")

	s.True(res.Complete)
	s.True(res.GenerationTriggered)
	s.Equal(0, res.Remaining)
	s.Equal([]string{"a", "c"}, s.pool.Player1Picks)
	s.Equal([]string{"b", "d"}, s.pool.Player2Picks)
	s.Empty(s.pool.CurrentPicker)
	s.Equal(PhaseGenerating, s.session.Phase)
}

func (s *DraftSuite) TestPickOutOfTurnLeavesStateUnchanged() {
	s.seed("a", "b", "c", "d")
	s.start()
	before := s.pool.Clone()

	_, err := PickWord(s.session, s.pool, "p2", "a")

	s.ErrorIs(err, ErrNotYourTurn)
	s.Equal(KindTurn, KindOf(err))
	s.Equal(before, s.pool)
}

func (s *DraftSuite) TestPickBeforeStartFails() {
	s.seed("a", "b", "c", "d")

	_, err := PickWord(s.session, s.pool, "p1", "a")

	s.ErrorIs(err, ErrPickingNotStarted)
	s.Equal(KindTurn, KindOf(err))
}

func (s *DraftSuite) TestPickMissingWordFails() {
	s.seed("a", "b", "c", "d")
	s.start()

	_, err := PickWord(s.session, s.pool, "p1", "zebra")

	s.ErrorIs(err, ErrWordNotInPool)
	s.Equal(KindNotFound, KindOf(err))
	s.Equal(PlayerID("p1"), s.pool.CurrentPicker)
}

func (s *DraftSuite) TestPickRemovesSingleDuplicate() {
	s.seed("fire", "fire", "ice", "wind")
	s.start()

	s.pick("p1", "fire")

	s.Equal([]string{"fire", "ice", "wind"}, s.pool.Words)
}

func (s *DraftSuite) TestPickCompletesAtQuotaWithWordsLeft() {
	s.seed("a", "b", "c", "d", "e", "f", "g", "h")
	s.start()

	var res PickResult
	for i, w := range []string{"a", "b", "c", "d", "e", "f"} {
		player := PlayerID("p1")
		if i%2 == 1 {
			player = "p2"
		}
		res = s.pick(player, w)
	}

	s.True(res.Complete)
	s.Equal(2, res.Remaining)
	s.Equal([]string{"g", "h"}, s.pool.Words)
	s.Equal(DraftComplete, s.pool.State())
}

func (s *DraftSuite) TestPickAfterCompleteFails() {
	s.seed("a", "b", "c", "d")
	s.start()
	s.pick("p1", "a")
	s.pick("p2", "b")
	s.pick("p1", "c")
	s.pick("p2", "d")

	for _, player := range []PlayerID{"p1", "p2"} {
		_, err := PickWord(s.session, s.pool, player, "a")
		s.ErrorIs(err, ErrDraftComplete)
	}
}

func (s *DraftSuite) TestOddPoolExhaustionAcceptsAsymmetricPicks() {
	s.seed("a", "b", "c", "d", "e")
	s.start()

	var res PickResult
	for i, w := range []string{"a", "b", "c", "d", "e"} {
		player := PlayerID("p1")
		if i%2 == 1 {
			player = "p2"
		}
		res = s.pick(player, w)
	}

	s.True(res.GenerationTriggered)
	s.Len(s.pool.Player1Picks, 3)
	s.Len(s.pool.Player2Picks, 2)
}

func (s *DraftSuite) TestWordsAreConserved() {
	s.seed("a", "b", "c", "d", "e", "f", "g")
	s.start()
	total := len(s.pool.Words)

	for s.pool.CurrentPicker != "" {
		s.pick(s.pool.CurrentPicker, s.pool.Words[0])
		s.Equal(total, len(s.pool.Words)+len(s.pool.Player1Picks)+len(s.pool.Player2Picks))
	}
}
