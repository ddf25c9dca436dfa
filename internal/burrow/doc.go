// Package burrow provides the HTTP and websocket client for the burrowd
// backup daemon API.
//
// # Overview
//
// The package exposes one typed method per daemon endpoint plus the
// mutation operations (snapshot create/delete, policy set/delete, task
// cancel, mount/unmount). All read methods return decoded payloads; all
// failures are normalized into *APIError values with a stable ErrorKind so
// callers can make policy decisions (suppress, surface, retry) without
// string matching.
//
// # Core Types
//
// Client:
//   - Wraps net/http with base-URL normalization, basic auth, and JSON
//     encoding/decoding
//   - Implements the API interface (compile-time asserted) so the sync
//     engine and tests can substitute fakes
//
// APIError:
//   - Kind: connection, auth, not-found, invalid, internal
//   - Message: one human-readable string for the UI
//   - Code: optional machine-readable code from the daemon
//
// EventStream:
//   - Long-lived websocket at /api/events
//   - Delivers typed Events on a channel that closes on disconnect
//   - Unknown event types are delivered untouched for forward
//     compatibility; the consumer decides what to skip
//
// # Error Normalization
//
// Classify folds transport errors (connection refused, reset, timeouts)
// into the connection kind with the message "server not running", which is
// the pattern the engine suppresses while the daemon is deliberately
// stopped. HTTP statuses map through statusError: 401/403 to auth, 404 to
// not-found, 400/422 to invalid, 503 to connection, everything else to
// internal.
package burrow
