// Package swaggerui serves the Swagger UI page and its initializer script.
//
// The viewer assets themselves come from a swagger-ui-dist distribution
// (a CDN by default). In client mode the initializer fetches the
// swagger-config document in the browser; in server mode the gateway
// resolves the options itself and emits them inline.
package swaggerui
