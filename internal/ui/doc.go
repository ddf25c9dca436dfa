// Package ui provides the terminal dashboard for Osprey.
//
// # Architecture Overview
//
// The dashboard is a bubbletea program layered on top of the sync engine.
// It owns no data: every second it re-reads the engine's resource views
// and rebuilds its widgets only when a view's version has moved, so an
// idle daemon produces zero redraw work beyond the tick itself.
//
// # Package Structure
//
//   - ui.go: Run function wiring the engine into a tea.Program
//   - model.go: the tea.Model, tick loop, and key handling
//   - header.go: status bar, command bar, and row formatting helpers
//   - theme.go: color themes and lipgloss style construction
//
// # Event Flow
//
//  1. Run() builds the Model around a started engine and runs the program
//  2. A one-second tick re-reads engine views; the task table rebuilds
//     only when the tasks view version changed
//  3. Key presses invoke engine operations (refresh, cancel, push toggle)
//     as tea commands; their results surface as a transient notice
//  4. Context cancellation shuts the program down cleanly
//
// # Key Bindings
//
//   - j/k or arrows: navigate the task table
//   - c: cancel the selected task
//   - r: refresh all resources now
//   - p: toggle the push channel (persisted to prefs)
//   - T: cycle the color theme (persisted to prefs)
//   - q or Ctrl+C: quit
package ui
