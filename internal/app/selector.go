package app

import (
	"math/rand"
	"sync"

	"github.com/veloji/blink/internal/domain"
)

// Selector picks the peer for a proposal out of the idle candidate pool.
// Selection is deliberately dumb; correctness lives in the registry's
// claim step, not here.
type Selector interface {
	Pick(candidates []domain.UserID) domain.UserID
}

// RandomSelector picks uniformly at random.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSelector) Pick(candidates []domain.UserID) domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return candidates[s.rng.Intn(len(candidates))]
}
