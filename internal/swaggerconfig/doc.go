// Package swaggerconfig resolves the Swagger UI bundle options.
//
// Loader fetches the swagger-config document once and turns it into the
// options passed to SwaggerUIBundle, falling back to the static list of
// movie booking services when the document cannot be loaded. Handler serves
// that document from the gateway's service catalog.
package swaggerconfig
