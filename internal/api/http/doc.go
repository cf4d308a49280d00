// Package http exposes the virtual filesystem, clipboard and terminal sessions
// over a gin JSON API for the File Explorer and Terminal front ends.
//
// Store results are returned as-is ({success, error, item}); failures are
// mapped to 404 (missing items), 409 (name collisions, nothing to undo,
// empty clipboard) or 400 (everything else).
package http
