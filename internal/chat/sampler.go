package chat

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultSampleRate is the probability that a message not addressed to the
// bot still gets a reply. Context is always saved; replying to everything
// would make the bot insufferable.
const DefaultSampleRate = 0.0001

// Sampler decides whether to process a non-mention message. The rate is
// explicit configuration and the random source is injectable so tests are
// deterministic.
type Sampler struct {
	rate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler with the given hit rate in [0, 1]. A nil
// source is seeded from the clock.
func NewSampler(rate float64, src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Sampler{rate: rate, rng: rand.New(src)}
}

// Hit reports whether this message should be processed.
func (s *Sampler) Hit() bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.rate
}

// Rate returns the configured hit rate.
func (s *Sampler) Rate() float64 {
	return s.rate
}
