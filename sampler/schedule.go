package sampler

import (
	"math/rand/v2"
	"time"
)

// Schedule draws benchmark indices for the random pass. Draws are
// independent and uniform over [0, n), with replacement.
type Schedule struct {
	n   int
	rng *rand.Rand
}

// NewSchedule creates a Schedule over n benchmarks. A zero seed seeds
// from the clock; any other seed makes the sequence reproducible.
func NewSchedule(n int, seed uint64) *Schedule {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Schedule{
		n:   n,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns the next index. IntN rejects out-of-range draws instead of
// reducing modulo n, so every index is equally likely.
func (s *Schedule) Next() int {
	return s.rng.IntN(s.n)
}
