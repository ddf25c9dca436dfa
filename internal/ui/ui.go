package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kmaclean/osprey/internal/engine"
	"github.com/kmaclean/osprey/internal/prefs"
)

// Options configure the UI runtime.
type Options struct {
	Engine    *engine.Engine
	Prefs     prefs.Prefs
	PrefsPath string
}

// Run starts the dashboard and blocks until ctx is cancelled or the user
// quits. The engine is expected to be started already; Run only reads its
// views and invokes operations on user input.
func Run(ctx context.Context, opts Options) error {
	if opts.Engine == nil {
		return fmt.Errorf("ui requires a sync engine")
	}

	model := NewModel(ctx, opts.Engine, opts.Prefs, opts.PrefsPath)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil {
		// Context cancellation is the normal shutdown path, not a failure.
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
