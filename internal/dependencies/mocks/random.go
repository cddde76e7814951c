package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/vibedraft/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Safe for concurrent use; unqueued calls return zero values.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int

	stringResults []string
	stringIndex   int
	stringCount   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result clamped to [0, n), or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.intnResults) || n <= 0 {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	if result >= n {
		result = n - 1
	}
	return result
}

// String returns the next queued result. Once the queue is exhausted it
// returns distinct deterministic strings so generated IDs never collide.
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex < len(r.stringResults) {
		result := r.stringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	r.stringCount++
	return fmt.Sprintf("mock%0*d", max(length-4, 1), r.stringCount)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.intnIndex = 0
	r.stringResults = nil
	r.stringIndex = 0
}
