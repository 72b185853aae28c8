// Package httputil provides HTTP response helpers for the dagflow API.
//
// # Overview
//
// Handlers report failures as structured [errors.Error] values. This
// package turns them into a consistent JSON envelope and status code:
//
//	{"error": {"code": "DANGLING_EDGE", "message": "edge e-A-Z ..."}, "request_id": "..."}
//
// # Status Mapping
//
// [StatusFor] maps error codes to HTTP status:
//
//   - Client errors (INVALID_*, DANGLING_EDGE): 400 Bad Request
//   - NOT_FOUND: 404 Not Found
//   - UNSUPPORTED: 501 Not Implemented
//   - NETWORK_ERROR: 503 Service Unavailable
//   - Everything else: 500 Internal Server Error
//
// Messages of server-side errors are replaced with a generic text so
// internal details never reach the client; the full error is logged.
//
// [errors.Error]: github.com/matzehuels/dagflow/pkg/errors.Error
package httputil
