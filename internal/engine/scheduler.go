package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// pollGroup is one repeating timer driving a set of background refreshes.
type pollGroup struct {
	stop chan struct{}
	done chan struct{}
}

// Start performs one immediate full refresh, then launches both poll
// groups and, when push is preferred, attempts to open the push channel.
// Calling Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	if e.pushPhase == pushStopped {
		e.pushPhase = pushDisconnected
	}
	e.runCtx, e.cancelRun = context.WithCancel(ctx)
	runCtx := e.runCtx
	usePush := e.usePush
	e.mu.Unlock()

	e.log.Info().
		Dur("slow", e.SlowInterval()).
		Dur("fast", e.FastInterval()).
		Bool("use_push", usePush).
		Msg("sync engine starting")

	e.refreshAll(runCtx, refreshBackground)

	e.mu.Lock()
	if e.running {
		e.startGroupsLocked(runCtx)
	}
	e.mu.Unlock()

	if usePush {
		go e.startPush(runCtx)
	}
}

// Stop cancels both poll groups and the push channel. Idempotent: safe to
// call on a stopped engine. Fetches already in flight are allowed to
// complete but their results are discarded by the publish path.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.cancelRun()
	e.stopGroupLocked(&e.slowGroup)
	e.stopGroupLocked(&e.fastGroup)
	stream := e.stream
	e.stream = nil
	e.pushPhase = pushStopped
	e.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	e.log.Info().Msg("sync engine stopped")
}

// IsPolling reports whether the timer groups are active.
func (e *Engine) IsPolling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running && (e.slowGroup != nil || e.fastGroup != nil)
}

// SlowInterval returns the current slow-group cadence.
func (e *Engine) SlowInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slowEvery
}

// FastInterval returns the current fast-group cadence.
func (e *Engine) FastInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fastEvery
}

// SetSlowInterval updates the slow-group cadence. While running, both
// timer groups are torn down and restarted, not just the slow one; see the
// package docs for why this coarse restart is intentional.
func (e *Engine) SetSlowInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slowEvery = d
	e.restartGroupsLocked()
}

// SetFastInterval updates the fast-group cadence, restarting both groups
// while running.
func (e *Engine) SetFastInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fastEvery = d
	e.restartGroupsLocked()
}

func (e *Engine) restartGroupsLocked() {
	if !e.running {
		return
	}
	e.stopGroupLocked(&e.slowGroup)
	e.stopGroupLocked(&e.fastGroup)
	e.startGroupsLocked(e.runCtx)
}

// startGroupsLocked launches both poll loops. The fast group is withheld
// while the push channel is connected: push carries the fast-changing
// resources and the fast timer only exists as its fallback.
func (e *Engine) startGroupsLocked(ctx context.Context) {
	if e.slowGroup == nil {
		e.slowGroup = e.launchGroup(ctx, "slow", e.SlowInterval, e.refreshSlowGroup)
	}
	if e.fastGroup == nil && e.pushPhase != pushConnected {
		e.fastGroup = e.launchGroup(ctx, "fast", e.FastInterval, e.fastTick)
	}
}

func (e *Engine) stopGroupLocked(g **pollGroup) {
	if *g == nil {
		return
	}
	close((*g).stop)
	*g = nil
}

// ensureFastGroup restarts the fast poll group if it is not currently
// running. This is the push channel's fallback path: after a disconnect or
// a failed connect the application must never be left with neither push
// nor fast polling active.
func (e *Engine) ensureFastGroup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.fastGroup != nil {
		return
	}
	e.fastGroup = e.launchGroup(e.runCtx, "fast", e.FastInterval, e.fastTick)
}

// fastTick is the fast group's refresh plus the push reconnect hook: while
// push is preferred but not connected, every fast tick doubles as a
// reconnect attempt.
func (e *Engine) fastTick(ctx context.Context) error {
	e.mu.Lock()
	retryPush := e.running && e.usePush && e.pushPhase == pushDisconnected
	e.mu.Unlock()
	if retryPush {
		go e.startPush(ctx)
	}
	return e.refreshFastGroup(ctx)
}

// launchGroup starts a poll loop goroutine. Consecutive tick failures
// stretch the wait with exponential backoff, capped at a small multiple of
// the configured interval; the first success snaps back to the normal
// cadence.
func (e *Engine) launchGroup(ctx context.Context, name string, interval func() time.Duration, tick func(context.Context) error) *pollGroup {
	g := &pollGroup{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(g.done)

		every := interval()
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = every
		b.RandomizationFactor = 0
		b.Multiplier = 2
		b.MaxInterval = 8 * every
		b.Reset()

		timer := time.NewTimer(every)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stop:
				return
			case <-timer.C:
			}

			wait := every
			if err := tick(ctx); err != nil {
				wait = b.NextBackOff()
				e.log.Debug().
					Str("group", name).
					Dur("next_tick", wait).
					Err(err).
					Msg("poll tick failed; backing off")
			} else {
				b.Reset()
			}
			timer.Reset(wait)
		}
	}()
	return g
}
