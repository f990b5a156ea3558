// Package random provides the bounded random source used by the game
// mechanics. Stat gains, activity experience, and timeout fallback moves
// all roll through a Roller so tests can script exact sequences.
package random

import (
	"math/rand/v2"
	"sync"
)

// Roller produces bounded random integers
type Roller interface {
	// IntN returns a uniform int in [0, n)
	IntN(n int) int

	// Between returns a uniform int in [low, high], inclusive on both ends
	Between(low, high int) int
}

// Source implements Roller over math/rand. Game mechanics do not need
// cryptographic randomness.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Roller seeded from the global source
func New() *Source {
	return &Source{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Roller with a fixed seed, for reproducible runs
func NewSeeded(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed))}
}

// IntN returns a uniform int in [0, n)
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Between returns a uniform int in [low, high]
func (s *Source) Between(low, high int) int {
	if high <= low {
		return low
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.IntN(high-low+1)
}

// Scripted implements Roller by replaying a fixed sequence, for tests.
// IntN and Between both consume one value; Between clamps the scripted
// value into its range so tests can't produce out-of-range stats.
type Scripted struct {
	Values []int
	next   int
}

// IntN returns the next scripted value modulo n
func (s *Scripted) IntN(n int) int {
	v := s.take()
	if n <= 0 {
		return 0
	}
	return ((v % n) + n) % n
}

// Between returns the next scripted value clamped to [low, high]
func (s *Scripted) Between(low, high int) int {
	v := s.take()
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func (s *Scripted) take() int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
