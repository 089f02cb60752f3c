// Package doccache keeps the last successfully fetched api-docs document of
// every service in a bbolt file, so the gateway can still serve documentation
// while a service is down.
package doccache
