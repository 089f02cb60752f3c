// Package backend models a single upstream service instance: its reverse
// proxy, health flag, in-flight request count, weight and response time.
package backend
