package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kmaclean/osprey/internal/burrow"
)

// mutableCell is the subset of cell behavior the mutation envelope needs,
// so one runMutation can own cells of different payload types.
type mutableCell interface {
	beginMutation()
	failMutation(msg string)
	endMutation()
}

// runMutation wraps a remote write in the uniform envelope: mark the owning
// resource loading and clear its error; invoke the operation; on success
// refresh every resource the write could have changed, then clear loading;
// on failure record the normalized message and hand the error back to the
// caller. Mutation failures are never swallowed.
func (e *Engine) runMutation(ctx context.Context, owner mutableCell, op func(context.Context) error, refreshes ...func(context.Context, refreshMode) error) error {
	owner.beginMutation()
	if err := op(ctx); err != nil {
		owner.failMutation(burrow.Classify(err).Message)
		return err
	}
	var g errgroup.Group
	for _, fn := range refreshes {
		g.Go(func() error {
			_ = fn(ctx, refreshTargeted)
			return nil
		})
	}
	_ = g.Wait()
	owner.endMutation()
	return nil
}

// CreateSnapshot starts a snapshot of the given source path.
func (e *Engine) CreateSnapshot(ctx context.Context, path string) error {
	return e.runMutation(ctx, &e.snapshots,
		func(ctx context.Context) error { return e.api.CreateSnapshot(ctx, path) },
		e.refreshSnapshots, e.refreshSources, e.refreshTasks)
}

// DeleteSnapshots removes the identified snapshots.
func (e *Engine) DeleteSnapshots(ctx context.Context, ids []string) error {
	return e.runMutation(ctx, &e.snapshots,
		func(ctx context.Context) error { return e.api.DeleteSnapshots(ctx, ids) },
		e.refreshSnapshots, e.refreshSources)
}

// SetPolicy creates or replaces the policy for its target.
func (e *Engine) SetPolicy(ctx context.Context, policy burrow.Policy) error {
	return e.runMutation(ctx, &e.policies,
		func(ctx context.Context) error { return e.api.SetPolicy(ctx, policy) },
		e.refreshPolicies)
}

// DeletePolicy removes the policy for a target.
func (e *Engine) DeletePolicy(ctx context.Context, target string) error {
	return e.runMutation(ctx, &e.policies,
		func(ctx context.Context) error { return e.api.DeletePolicy(ctx, target) },
		e.refreshPolicies)
}

// CancelTask requests cancellation of a running task. The follow-up task
// refresh is what ultimately reports the CANCELED transition.
func (e *Engine) CancelTask(ctx context.Context, id string) error {
	return e.runMutation(ctx, &e.tasks,
		func(ctx context.Context) error { return e.api.CancelTask(ctx, id) },
		e.refreshTasks, e.refreshTaskSummary)
}

// MountSnapshot mounts a snapshot as a browsable filesystem.
func (e *Engine) MountSnapshot(ctx context.Context, id string) error {
	return e.runMutation(ctx, &e.mounts,
		func(ctx context.Context) error { return e.api.MountSnapshot(ctx, id) },
		e.refreshMounts)
}

// UnmountSnapshot removes a snapshot mount.
func (e *Engine) UnmountSnapshot(ctx context.Context, id string) error {
	return e.runMutation(ctx, &e.mounts,
		func(ctx context.Context) error { return e.api.UnmountSnapshot(ctx, id) },
		e.refreshMounts)
}
