// Package middleware provides gin middleware for the vfsd HTTP API:
// CORS, per-client rate limiting, request ids and request logging.
package middleware
