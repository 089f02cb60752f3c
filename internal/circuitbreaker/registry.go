package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per upstream service, created on first use.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) GetBreaker(serviceID string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[serviceID]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if cb, exists = r.breakers[serviceID]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[serviceID] = cb
	return cb
}

// Stats returns the state of every breaker created so far.
func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for id, cb := range r.breakers {
		stats[id] = cb.State()
	}
	return stats
}

// AllClosed is true when no service is currently degraded.
func (r *Registry) AllClosed() bool {
	for _, s := range r.Stats() {
		if s != StateClosed {
			return false
		}
	}
	return true
}
