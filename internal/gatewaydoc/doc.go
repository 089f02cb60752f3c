// Package gatewaydoc describes the gateway's own endpoints as an OpenAPI 3
// document, served as JSON and YAML.
package gatewaydoc
