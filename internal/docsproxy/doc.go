// Package docsproxy routes /{service}/api-docs requests to a healthy instance
// of the service, guarded by the service's circuit breaker. When the service
// cannot answer, the last cached document or the service's fallback body is
// served instead.
package docsproxy
