// Package app provides the orchestration layer for the Osprey application.
//
// # Overview
//
// This package is the composition root: it wires configuration, preferences,
// the burrowd client, the sync engine, and the dashboard together. Business
// logic lives in the domain packages; app only connects them.
//
// # Startup Sequence
//
//  1. Load daemon connection settings from ~/.config/osprey/config.toml
//  2. Load user preferences from ~/.config/osprey/prefs.toml
//  3. Open the log file (the TUI owns the terminal, so logs go to a file)
//  4. Create the burrowd HTTP client
//  5. Create and start the sync engine (polling groups plus the optional
//     push channel)
//  6. Run the dashboard and block until the user quits or the context is
//     cancelled; stop the engine on the way out
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()     daemon address, credentials
//	       ├─────> prefs.Load()      theme, push, poll intervals
//	       ├─────> burrow.NewClient()
//	       ├─────> engine.New() + Start()
//	       └─────> ui.Run()          blocks
//
//	Engine (background):
//	  slow group ──> server/repo/maintenance/snapshots/mounts
//	  fast group ──> tasks/summary/sources (parked while push is live)
//	  push channel ─> targeted refreshes on daemon events
//
// # Error Handling
//
// Fatal errors returned from Run: unreadable config, log file creation
// failure, client construction failure, or a dashboard crash. Everything
// that happens after startup (fetch failures, push disconnects, notifier
// errors) is the engine's business and is logged, not fatal; the daemon
// can restart underneath a running Osprey.
//
// # Configuration Precedence
//
// Poll intervals resolve flag > prefs file > engine default. The push
// channel is enabled when prefs say so, unless the -no-push flag forces
// polling for the session.
package app
