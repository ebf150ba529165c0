package searcher

import "golang.org/x/exp/rand"

// RandomSource draws uniform indices for expansion and rollouts.
type RandomSource interface {
	// Intn returns a uniform integer in [0, n). n must be positive.
	Intn(n int) int
}

// NewRandomSource returns a generator that produces the same sequence for
// the same seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
