package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kmaclean/osprey/internal/burrow"
)

// TaskTransition records one task moving from RUNNING to a terminal status
// between two consecutive task-list fetches. Task is the post-transition
// report.
type TaskTransition struct {
	Task      burrow.Task
	Succeeded bool
}

// Notifier receives task transitions. Dispatch is asynchronous and
// best-effort: a failing notifier is logged and never blocks or fails the
// refresh that produced the transition.
type Notifier interface {
	Notify(ctx context.Context, tr TaskTransition) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, tr TaskTransition) error

func (f NotifierFunc) Notify(ctx context.Context, tr TaskTransition) error {
	return f(ctx, tr)
}

// logNotifier is the default sink when the application wires nothing else.
type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(_ context.Context, tr TaskTransition) error {
	ev := n.log.Info()
	if !tr.Succeeded {
		ev = n.log.Warn()
	}
	ev.Str("task", tr.Task.ID).
		Str("status", tr.Task.Status).
		Msgf("%s finished", tr.Task.Label())
	return nil
}

// detectTransitions diffs two consecutive task lists. A task RUNNING in
// prev whose ID reappears in next with a terminal status yields exactly one
// transition. A task that vanished entirely yields none: "completed and
// pruned" is indistinguishable here from a transient fetch gap, and we
// choose silence over a possibly bogus notification.
func detectTransitions(prev, next []burrow.Task) []TaskTransition {
	if len(prev) == 0 {
		return nil
	}
	byID := make(map[string]burrow.Task, len(next))
	for _, t := range next {
		byID[t.ID] = t
	}
	var out []TaskTransition
	for _, p := range prev {
		if p.Status != burrow.TaskRunning {
			continue
		}
		n, ok := byID[p.ID]
		if !ok {
			continue
		}
		if burrow.IsTerminalStatus(n.Status) {
			out = append(out, TaskTransition{
				Task:      n,
				Succeeded: n.Status == burrow.TaskSuccess,
			})
		}
	}
	return out
}

// dispatch hands transitions to the notifier on a separate goroutine so
// the refresh path stays pure.
func (e *Engine) dispatch(transitions []TaskTransition) {
	if len(transitions) == 0 || e.notifier == nil {
		return
	}
	go func() {
		for _, tr := range transitions {
			if err := e.notifier.Notify(context.Background(), tr); err != nil {
				e.log.Warn().Err(err).Str("task", tr.Task.ID).Msg("notification dispatch failed")
			}
		}
	}()
}
