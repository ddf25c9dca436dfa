// Package engine keeps every tracked burrowd resource fresh in local
// memory and is the only component in Osprey with real concurrency
// coordination.
//
// # Overview
//
// Nine independent resources (server status, repository status, snapshot
// inventory, sources, policies, tasks, task summary, mounts, maintenance
// info) are cached in per-resource cells. Two competing update strategies
// feed the same refresh path:
//
//	                 ┌──────────────────────────────┐
//	slow ticker ────→│                              │
//	fast ticker ────→│   refresh (per resource)     │───→ cell publish
//	push events ────→│                              │     (change-gated)
//	mutations   ────→│   targeted refreshes         │
//	                 └──────────────────────────────┘
//
// The push channel, when preferred and connectable, replaces the fast
// ticker; any disconnect or connect failure restarts fast polling, so the
// fast-changing resources are never left without an update source.
//
// # Publish Rules
//
// A successful fetch only replaces a cell's value when the payload is
// structurally different from the cached one (go-cmp, nil and empty
// collections equal); otherwise the stored value and version are left
// untouched so version-keyed consumers do not re-render. A failed
// background fetch resets the value to the resource's disconnected
// default, and connection-kind errors (expected while the daemon is
// deliberately stopped) are suppressed rather than written, which keeps
// the UI from flashing errors during normal disconnects. Explicit
// refreshes and mutations surface every error.
//
// # Concurrency Model
//
// Each cell has its own RWMutex; the engine's mu guards lifecycle state
// (running flag, poll groups, push phase). Overlapping refreshes of the
// same resource are permitted and resolve last-write-wins, which is sound
// because every fetch is an idempotent read. Stopping the engine does not
// cancel in-flight fetches; their results are discarded at publish time by
// the running-flag check.
//
// # Transitions
//
// The task-list refresh diffs the incoming list against the cached one
// before overwriting it. Tasks that move RUNNING → SUCCESS/FAILED/CANCELED
// produce exactly one TaskTransition, dispatched to the Notifier on a
// separate goroutine. A task that disappears between ticks produces
// nothing: pruning and transient fetch gaps are indistinguishable here.
//
// # Scheduling
//
// The slow group (default 30s) covers server status, repository status,
// maintenance, snapshots, and mounts; the fast group (default 5s) covers
// tasks, the task summary, and sources. Changing either interval restarts
// both groups, a deliberate simplification kept until per-group restart
// is worth its bookkeeping. Consecutive tick failures back off
// exponentially up to 8x the configured interval and snap back on the
// first success. While push is preferred but disconnected, every fast tick
// doubles as a reconnect attempt; there is no separate reconnect timer.
package engine
