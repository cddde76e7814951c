package random_test

import (
	"testing"

	"github.com/mcoot/vibedraft/internal/dependencies/mocks"
	"github.com/mcoot/vibedraft/internal/dependencies/random"
	"github.com/stretchr/testify/assert"
)

func TestShuffleUsesSource(t *testing.T) {
	r := mocks.NewMockRandom()
	// i=3 swaps with 0, i=2 with 2, i=1 with 0
	r.QueueIntn(0, 2, 0)

	items := []string{"a", "b", "c", "d"}
	random.Shuffle(r, items)

	assert.Equal(t, []string{"b", "d", "c", "a"}, items)
}

func TestShuffleKeepsElements(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	random.Shuffle(random.New(), items)

	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f"}, items)
}

func TestChoice(t *testing.T) {
	r := mocks.NewMockRandom()
	r.QueueIntn(2)

	got, ok := random.Choice(r, []string{"x", "y", "z"})
	assert.True(t, ok)
	assert.Equal(t, "z", got)

	_, ok = random.Choice(r, []string{})
	assert.False(t, ok)
}

func TestCryptoRandomString(t *testing.T) {
	s := random.New().String(12, random.IDAlphabet)

	assert.Len(t, s, 12)
	for _, c := range s {
		assert.Contains(t, random.IDAlphabet, string(c))
	}
}
