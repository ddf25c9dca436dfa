package engine

import (
	"context"
	"errors"

	"github.com/kmaclean/osprey/internal/burrow"
)

// pushPhase is the push channel's lifecycle state. Stopped is absorbing:
// only a fresh Start leaves it.
type pushPhase int

const (
	pushDisconnected pushPhase = iota
	pushConnecting
	pushConnected
	pushStopped
)

// IsPushConnected reports whether the push channel is currently live.
func (e *Engine) IsPushConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pushPhase == pushConnected
}

// UsePush reports the push preference.
func (e *Engine) UsePush() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usePush
}

// SetUsePush flips the push preference. Turning it on while running
// attempts a connect immediately; turning it off closes any live channel
// and falls back to fast polling.
func (e *Engine) SetUsePush(v bool) {
	e.mu.Lock()
	e.usePush = v
	running := e.running
	runCtx := e.runCtx
	var stream burrow.EventStream
	if !v {
		stream = e.stream
		e.stream = nil
		if e.pushPhase == pushConnected || e.pushPhase == pushConnecting {
			e.pushPhase = pushDisconnected
		}
	}
	e.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	if !running {
		return
	}
	if v {
		go e.startPush(runCtx)
	} else {
		e.ensureFastGroup()
	}
}

// startPush attempts to open the push channel. Every skip condition is a
// logged no-op, never a hard failure: the worst case is that polling stays
// the only update source.
func (e *Engine) startPush(ctx context.Context) {
	e.mu.Lock()
	if !e.running || !e.usePush || e.pushPhase != pushDisconnected {
		e.mu.Unlock()
		return
	}
	if sv := e.serverStatus.view(); sv.HasValue && !sv.Value.Running {
		e.mu.Unlock()
		e.log.Debug().Msg("push connect skipped: server not running")
		return
	}
	e.pushPhase = pushConnecting
	e.mu.Unlock()

	stream, err := e.api.DialEvents(ctx)
	if err != nil {
		e.mu.Lock()
		if e.pushPhase == pushConnecting {
			e.pushPhase = pushDisconnected
		}
		e.mu.Unlock()
		if errors.Is(err, burrow.ErrNoCredentials) {
			e.log.Debug().Msg("push connect skipped: no credentials configured")
		} else {
			e.log.Warn().Err(err).Msg("push connect failed; staying on polling")
		}
		e.ensureFastGroup()
		return
	}

	e.mu.Lock()
	if !e.running || !e.usePush {
		e.mu.Unlock()
		_ = stream.Close()
		return
	}
	e.pushPhase = pushConnected
	e.stream = stream
	// Push now carries the fast-changing resources; the fast timer would
	// only duplicate it.
	e.stopGroupLocked(&e.fastGroup)
	e.mu.Unlock()

	e.log.Info().Msg("push channel connected")
	go e.consumeEvents(ctx, stream)
}

// consumeEvents routes push events into targeted refreshes until the
// stream closes, then arranges the polling fallback.
func (e *Engine) consumeEvents(ctx context.Context, stream burrow.EventStream) {
	for ev := range stream.Events() {
		switch ev.Type {
		case burrow.EventTaskProgress:
			_ = e.refreshTasks(ctx, refreshBackground)
			_ = e.refreshTaskSummary(ctx, refreshBackground)
		case burrow.EventSnapshotProgress:
			_ = e.refreshSnapshots(ctx, refreshBackground)
			_ = e.refreshSources(ctx, refreshBackground)
		case burrow.EventError:
			e.log.Warn().Str("message", ev.Message).Msg("server reported error over push channel")
		case burrow.EventNotification:
			e.log.Info().Str("message", ev.Message).Msg("server notification")
		default:
			// Unknown event types are ignored for forward compatibility.
		}
	}

	e.mu.Lock()
	mine := e.stream == stream
	if mine {
		e.stream = nil
		if e.pushPhase == pushConnected {
			e.pushPhase = pushDisconnected
		}
	}
	running := e.running
	e.mu.Unlock()

	if !mine || !running {
		return
	}
	e.log.Warn().Msg("push channel disconnected; falling back to fast polling")
	e.ensureFastGroup()
}
