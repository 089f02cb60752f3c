package strategy

import (
	"github.com/moviebooking/docs-gateway/internal/backend"
)

const (
	RoundRobin         = "round-robin"
	LeastConn          = "least-conn"
	LeastResponse      = "least-response"
	WeightedRoundRobin = "weighted-round-robin"
)

// Strategy picks one backend out of the healthy instances of a service.
// Implementations keep per-service state, so each service owns its own.
type Strategy interface {
	SelectBackend(backends []*backend.Backend) *backend.Backend
}

// New returns the strategy registered under name. The boolean is false when
// name is unknown and round-robin was substituted.
func New(name string) (Strategy, bool) {
	switch name {
	case RoundRobin:
		return NewRoundRobinStrategy(), true
	case LeastConn:
		return NewLeastConnStrategy(), true
	case LeastResponse:
		return NewLeastResponseStrategy(), true
	case WeightedRoundRobin:
		return NewWeightedRoundRobinStrategy(), true
	default:
		return NewRoundRobinStrategy(), false
	}
}
