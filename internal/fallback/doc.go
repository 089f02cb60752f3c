// Package fallback produces the 503 answers served when a service cannot be
// reached, and reports whether the gateway is running in fallback mode.
package fallback
