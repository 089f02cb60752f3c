package strategy

import (
	"time"

	"github.com/moviebooking/docs-gateway/internal/backend"
)

type leastResponseStrategy struct{}

func NewLeastResponseStrategy() Strategy {
	return &leastResponseStrategy{}
}

// SelectBackend scores each instance as ewma * (inflight + 1). Instances
// with no recorded response are tried first so every replica gets sampled.
func (s *leastResponseStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	var (
		chosen *backend.Backend
		best   time.Duration
	)

	for _, b := range backends {
		ewma := b.EWMATime()
		if ewma == 0 {
			return b
		}

		score := ewma * time.Duration(b.ActiveConnections()+1)
		if chosen == nil || score < best {
			chosen, best = b, score
		}
	}

	return chosen
}
