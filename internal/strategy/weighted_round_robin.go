package strategy

import (
	"sync"

	"github.com/moviebooking/docs-gateway/internal/backend"
)

// weightedRoundRobinStrategy is the smooth weighted round-robin used by
// nginx: every pick adds each weight to its running score, the top score
// wins and is reduced by the total weight.
type weightedRoundRobinStrategy struct {
	mutex   sync.Mutex
	current map[*backend.Backend]int
}

func NewWeightedRoundRobinStrategy() Strategy {
	return &weightedRoundRobinStrategy{
		current: make(map[*backend.Backend]int),
	}
}

func (s *weightedRoundRobinStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.forgetMissing(backends)

	total := 0
	var chosen *backend.Backend

	for _, b := range backends {
		w := b.Weight()
		s.current[b] += w
		total += w

		if chosen == nil || s.current[b] > s.current[chosen] {
			chosen = b
		}
	}

	s.current[chosen] -= total
	return chosen
}

// forgetMissing drops scores of instances that left the healthy set so a
// recovering instance restarts from zero.
func (s *weightedRoundRobinStrategy) forgetMissing(backends []*backend.Backend) {
	present := make(map[*backend.Backend]struct{}, len(backends))
	for _, b := range backends {
		present[b] = struct{}{}
	}

	for b := range s.current {
		if _, ok := present[b]; !ok {
			delete(s.current, b)
		}
	}
}
