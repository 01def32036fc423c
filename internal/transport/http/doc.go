// Package http contains the HTTP transport layer: the chi router, the
// request/response types and the handlers for the prediction and product
// analytics endpoints. Handlers validate input, delegate to the services
// layer and render RFC 7807 problem responses on failure.
package http
