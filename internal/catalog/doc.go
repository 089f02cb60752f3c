// Package catalog is the gateway's registry of documented services and the
// place where a request for a service's docs is assigned to one replica.
package catalog
