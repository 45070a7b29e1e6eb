// Package http implements the JSON HTTP surface of the support portal.
//
// It wires the chi router, the session cookie, and the middleware that binds
// one request-scoped unit of work to every request. Handlers decode the
// request, call the service layer and map service errors to status codes;
// they carry no business rules of their own.
package http
