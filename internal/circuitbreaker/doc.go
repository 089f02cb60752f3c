// Package circuitbreaker stops the gateway from hammering an upstream whose
// documentation endpoint keeps failing.
//
// Each service has one breaker with three states:
//
//   - CLOSED: requests pass through to the upstream
//   - OPEN: the fallback is served immediately
//   - HALF-OPEN: one probe request decides whether to close again
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := registry.GetBreaker("theatre-service")
//	if cb.Allow() {
//	    // proxy the request...
//	    if failed {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
package circuitbreaker
