// Package strategy selects the upstream instance that serves a documentation
// request when a service runs more than one replica:
//
//   - Round Robin: Sequential distribution across instances
//   - Least Connections: Instance with the fewest in-flight requests
//   - Least Response Time: EWMA response time scaled by in-flight requests
//   - Weighted Round Robin: Smooth distribution proportional to weights
//
// Callers pass only healthy instances.
package strategy
