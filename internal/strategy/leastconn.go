package strategy

import (
	"github.com/moviebooking/docs-gateway/internal/backend"
)

type leastConnStrategy struct{}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}

// SelectBackend prefers the fewest in-flight requests; ties go to the
// heavier instance, then to the earlier one.
func (s *leastConnStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	var (
		best      *backend.Backend
		bestConns int
	)

	for _, b := range backends {
		conns := b.ActiveConnections()
		switch {
		case best == nil, conns < bestConns:
			best, bestConns = b, conns
		case conns == bestConns && b.Weight() > best.Weight():
			best = b
		}
	}

	return best
}
