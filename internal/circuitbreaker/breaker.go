package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // upstream docs served normally
	StateOpen                  // fallback served without contacting upstream
	StateHalfOpen              // one probe request in flight
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets states appear by name in JSON bodies.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type CircuitBreaker struct {
	mutex            sync.Mutex
	state            State
	failures         int
	openedAt         time.Time
	probing          bool
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
}

func NewCircuitBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		resetTimeout:     timeout,
		now:              time.Now,
	}
}

// Allow reports whether a request may reach the upstream. After the reset
// timeout an open breaker admits exactly one probe; further callers are
// refused until that probe is recorded.
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.probing = true
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.probing = false

	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.probing = false
	cb.state = StateClosed
}

// Release gives back a probe slot without an outcome, for requests abandoned
// by the caller.
func (cb *CircuitBreaker) Release() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.probing = false
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}
