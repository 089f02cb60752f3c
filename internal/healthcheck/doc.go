// Package healthcheck probes every upstream instance on a fixed interval and
// flips its health flag, so the catalog only routes documentation requests to
// instances that answer their health endpoint.
package healthcheck
