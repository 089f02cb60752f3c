// Package config handles loading and validation of the gateway configuration
// from YAML files and environment variables. It defines the server, logging,
// resilience, documentation viewer and upstream service settings.
package config
