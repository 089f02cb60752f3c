// Package httpserver wraps net/http with a validated listen address, sane
// timeouts, graceful shutdown and request logging.
package httpserver
