package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kmaclean/osprey/internal/burrow"
)

const (
	// DefaultSlowInterval paces the resources that rarely change outside
	// explicit user action.
	DefaultSlowInterval = 30 * time.Second
	// DefaultFastInterval paces the resources that move while a backup or
	// restore is in flight.
	DefaultFastInterval = 5 * time.Second
)

// Options configure a new Engine.
type Options struct {
	UsePush      bool
	SlowInterval time.Duration
	FastInterval time.Duration
	Notifier     Notifier
	Logger       zerolog.Logger
}

// Engine keeps every tracked burrowd resource fresh in memory. One instance
// is created at application start and passed to consumers by reference;
// consumers read published Views and call the documented action methods,
// nothing else.
type Engine struct {
	api      burrow.API
	log      zerolog.Logger
	notifier Notifier

	mu        sync.Mutex
	running   bool
	runCtx    context.Context
	cancelRun context.CancelFunc
	usePush   bool
	slowEvery time.Duration
	fastEvery time.Duration
	slowGroup *pollGroup
	fastGroup *pollGroup
	pushPhase pushPhase
	stream    burrow.EventStream

	// taskDiffMu serializes the diff-and-store step of refreshTasks.
	// Overlapping task refreshes are otherwise free to race (last write
	// wins), but two of them diffing against the same previous list would
	// each report the same transition, and notifications must fire exactly
	// once.
	taskDiffMu sync.Mutex

	serverStatus cell[burrow.StatusResponse]
	repoStatus   cell[burrow.RepoStatus]
	snapshots    cell[[]burrow.Snapshot]
	sources      cell[[]burrow.Source]
	policies     cell[[]burrow.Policy]
	tasks        cell[[]burrow.Task]
	taskSummary  cell[burrow.TaskSummary]
	mounts       cell[[]burrow.Mount]
	maintenance  cell[burrow.MaintenanceInfo]
}

// New builds an Engine around the given API client.
func New(api burrow.API, opts Options) *Engine {
	e := &Engine{
		api:       api,
		log:       opts.Logger,
		notifier:  opts.Notifier,
		usePush:   opts.UsePush,
		slowEvery: opts.SlowInterval,
		fastEvery: opts.FastInterval,
	}
	if e.slowEvery <= 0 {
		e.slowEvery = DefaultSlowInterval
	}
	if e.fastEvery <= 0 {
		e.fastEvery = DefaultFastInterval
	}
	if e.notifier == nil {
		e.notifier = logNotifier{log: e.log}
	}
	return e
}

// refreshMode selects the bookkeeping rules for one refresh call.
type refreshMode int

const (
	// refreshBackground: poll ticks and push events. Never sets the
	// loading flag, suppresses expected connection errors, and drops its
	// write when the engine has been stopped in the meantime.
	refreshBackground refreshMode = iota
	// refreshExplicit: user-initiated refresh. Sets loading, surfaces
	// every error, always writes.
	refreshExplicit
	// refreshTargeted: post-mutation refresh. No loading flag (the
	// mutation's owner cell already carries it), surfaces errors, always
	// writes.
	refreshTargeted
)

// refreshInto runs one fetch and publishes the outcome into the cell under
// the mode's rules. The returned error is for the caller's own pacing
// decisions; it has already been recorded where policy requires.
func refreshInto[T any](e *Engine, ctx context.Context, c *cell[T], fetch func(context.Context) (T, error), fallback T, mode refreshMode) error {
	if mode == refreshExplicit {
		c.setLoading(true)
	}
	v, err := fetch(ctx)
	if mode == refreshBackground && !e.isRunning() {
		// Stopped while the fetch was in flight; the result is stale by
		// decree, not by data.
		return err
	}
	if err != nil {
		apiErr := burrow.Classify(err)
		suppress := mode == refreshBackground && apiErr.Kind == burrow.KindConnection
		c.storeError(apiErr.Message, fallback, suppress)
		return err
	}
	c.storeValue(v)
	return nil
}

func (e *Engine) refreshServerStatus(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.serverStatus, e.api.ServerStatus, burrow.StatusResponse{}, mode)
}

func (e *Engine) refreshRepoStatus(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.repoStatus, e.api.RepositoryStatus, burrow.RepoStatus{}, mode)
}

func (e *Engine) refreshSnapshots(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.snapshots, e.api.ListSnapshots, nil, mode)
}

func (e *Engine) refreshSources(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.sources, e.api.ListSources, nil, mode)
}

func (e *Engine) refreshPolicies(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.policies, e.api.ListPolicies, nil, mode)
}

func (e *Engine) refreshTaskSummary(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.taskSummary, e.api.TasksSummary, nil, mode)
}

func (e *Engine) refreshMounts(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.mounts, e.api.ListMounts, nil, mode)
}

func (e *Engine) refreshMaintenance(ctx context.Context, mode refreshMode) error {
	return refreshInto(e, ctx, &e.maintenance, e.api.MaintenanceInfo, burrow.MaintenanceInfo{}, mode)
}

// refreshTasks is the one refresh with a side channel: before the new list
// replaces the cached one, it is diffed against the previous list and any
// RUNNING-to-terminal transitions are handed to the notifier. Diff and
// store run under taskDiffMu, so concurrent refreshes never diff against
// the same previous list and report a transition twice.
func (e *Engine) refreshTasks(ctx context.Context, mode refreshMode) error {
	if mode == refreshExplicit {
		e.tasks.setLoading(true)
	}
	next, err := e.api.ListTasks(ctx)
	if mode == refreshBackground && !e.isRunning() {
		return err
	}
	if err != nil {
		apiErr := burrow.Classify(err)
		suppress := mode == refreshBackground && apiErr.Kind == burrow.KindConnection
		e.tasks.storeError(apiErr.Message, nil, suppress)
		return err
	}
	e.taskDiffMu.Lock()
	var transitions []TaskTransition
	if prev := e.tasks.view(); prev.HasValue {
		transitions = detectTransitions(prev.Value, next)
	}
	e.tasks.storeValue(next)
	e.taskDiffMu.Unlock()
	e.dispatch(transitions)
	return nil
}

// RefreshAll fans out a refresh of every resource concurrently and waits
// for all of them. A failure in one resource never aborts the others, and
// RefreshAll itself never fails: fetch errors land in the per-resource
// error fields.
func (e *Engine) RefreshAll(ctx context.Context) {
	e.refreshAll(ctx, refreshExplicit)
}

func (e *Engine) refreshAll(ctx context.Context, mode refreshMode) {
	refreshes := []func(context.Context, refreshMode) error{
		e.refreshServerStatus,
		e.refreshRepoStatus,
		e.refreshSnapshots,
		e.refreshSources,
		e.refreshPolicies,
		e.refreshTasks,
		e.refreshTaskSummary,
		e.refreshMounts,
		e.refreshMaintenance,
	}
	// Plain group, not WithContext: a failing sibling must not cancel the
	// rest of the fan-out.
	var g errgroup.Group
	for _, fn := range refreshes {
		g.Go(func() error {
			_ = fn(ctx, mode)
			return nil
		})
	}
	_ = g.Wait()
}

// refreshSlowGroup refreshes the slow-cadence resources. Returns the first
// fetch error purely so the poll loop can pace its backoff.
func (e *Engine) refreshSlowGroup(ctx context.Context) error {
	fns := []func(context.Context, refreshMode) error{
		e.refreshServerStatus,
		e.refreshRepoStatus,
		e.refreshMaintenance,
		e.refreshSnapshots,
		e.refreshMounts,
	}
	return e.refreshGroup(ctx, fns)
}

// refreshFastGroup refreshes the fast-cadence resources.
func (e *Engine) refreshFastGroup(ctx context.Context) error {
	fns := []func(context.Context, refreshMode) error{
		e.refreshTasks,
		e.refreshTaskSummary,
		e.refreshSources,
	}
	return e.refreshGroup(ctx, fns)
}

func (e *Engine) refreshGroup(ctx context.Context, fns []func(context.Context, refreshMode) error) error {
	errs := make([]error, len(fns))
	var g errgroup.Group
	for i, fn := range fns {
		g.Go(func() error {
			errs[i] = fn(ctx, refreshBackground)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Read accessors. Each returns an independent snapshot; slices inside the
// snapshot must be treated as read-only by consumers.

func (e *Engine) ServerStatus() View[burrow.StatusResponse] { return e.serverStatus.view() }
func (e *Engine) RepoStatus() View[burrow.RepoStatus]       { return e.repoStatus.view() }
func (e *Engine) Snapshots() View[[]burrow.Snapshot]        { return e.snapshots.view() }
func (e *Engine) Sources() View[[]burrow.Source]            { return e.sources.view() }
func (e *Engine) Policies() View[[]burrow.Policy]           { return e.policies.view() }
func (e *Engine) Tasks() View[[]burrow.Task]                { return e.tasks.view() }
func (e *Engine) TaskSummary() View[burrow.TaskSummary]     { return e.taskSummary.view() }
func (e *Engine) Mounts() View[[]burrow.Mount]              { return e.mounts.view() }
func (e *Engine) Maintenance() View[burrow.MaintenanceInfo] { return e.maintenance.view() }

// IsServerRunning reports whether the last known server status says the
// daemon is up.
func (e *Engine) IsServerRunning() bool {
	v := e.serverStatus.view()
	return v.HasValue && v.Value.Running
}

// IsRepoConnected reports whether the last known repository status says a
// repository is connected.
func (e *Engine) IsRepoConnected() bool {
	v := e.repoStatus.view()
	return v.HasValue && v.Value.Connected
}
