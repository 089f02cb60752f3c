// Package ratelimit throttles documentation requests per client with a token
// bucket keyed by user id or client address.
package ratelimit
