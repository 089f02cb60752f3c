package strategy

import (
	"sync/atomic"

	"github.com/moviebooking/docs-gateway/internal/backend"
)

type roundRobinStrategy struct {
	next atomic.Uint64
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}

func (s *roundRobinStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	n := s.next.Add(1) - 1
	return backends[n%uint64(len(backends))]
}
