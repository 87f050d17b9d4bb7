package version

import (
	"context"

	"github.com/yawlrun/yawlrun/authz"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/net"
	"github.com/yawlrun/yawlrun/subwf"
)

// authorizeAndClaim mediates a claim request through m's authz registry.
func authorizeAndClaim(ctx context.Context, rc *ctxrun.Context, m *Manager, wi *net.WorkItem, userID string) error {
	return authz.AuthorizeClaim(ctx, rc, m.registry, wi, userID)
}

// propagateToParent runs subwf.OnChildCompleted for wf if it is a child
// instance, completing the parent composite task and, transitively,
// re-checking the parent workflow for completion of its own. This is the
// engine recursing into itself off the back of a child's own completion,
// so the context is marked internal before reaching subwf.
func (m *Manager) propagateToParent(ctx context.Context, wf *net.Workflow) error {
	if wf.Parent.IsZero() {
		return nil
	}
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "propagateChildCompletion", "", "")
	if err != nil {
		return err
	}
	if err := subwf.OnChildCompleted(rc.Internal(), wf, m.router); err != nil {
		rc.Rollback()
		return err
	}
	if err := rc.Commit(); err != nil {
		return err
	}
	return m.maybeCompleteWorkflow(ctx, wf.Parent.WorkflowID)
}
