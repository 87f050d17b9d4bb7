// Package cancel implements cancellation-region semantics: an
// owner-scoped set of tasks and conditions canceled atomically and
// idempotently, with deterministic ordering, and upward propagation into
// a composite parent task when no alternative exit remains.
package cancel

import (
	"errors"
	"sort"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

// Region cancels every task and condition in r, in ascending id order for
// determinism, resetting condition markings to zero and transitioning
// enabled or started tasks to canceled (tasks in any other state are left
// as they are). It is idempotent: canceling an already-canceled region is
// a no-op. canceledBy is recorded on every resulting key-event and on any
// work item canceled as a side effect.
func Region(rc *ctxrun.Context, r *net.CancellationRegion, canceledBy net.ID) error {
	close := rc.OpenSpan("cancelRegion", map[string]any{"regionId": r.ID.String()})
	defer close()
	ctx := rc.GoContext()
	tx := rc.Tx()

	taskIDs := append([]net.ID(nil), r.TaskIDs...)
	sort.Slice(taskIDs, func(i, j int) bool { return taskIDs[i] < taskIDs[j] })
	for _, id := range taskIDs {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if err := cancelTask(rc, t, canceledBy); err != nil {
			return err
		}
	}

	condIDs := append([]net.ID(nil), r.ConditionIDs...)
	sort.Slice(condIDs, func(i, j int) bool { return condIDs[i] < condIDs[j] })
	for _, id := range condIDs {
		c, err := tx.GetCondition(ctx, id)
		if err != nil {
			return err
		}
		if c.Marking == 0 {
			continue
		}
		if _, err := tx.ResetMarking(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// cancelTask cancels t and every non-terminal work item belonging to it.
// Only tasks in {enabled, started} are in scope for cancellation; a task
// that never enabled (disabled) or already left the net (complete,
// canceled, failed) is left untouched (idempotency).
func cancelTask(rc *ctxrun.Context, t *net.Task, canceledBy net.ID) error {
	if t.State != net.TaskEnabled && t.State != net.TaskStarted {
		return nil
	}
	ctx := rc.GoContext()
	tx := rc.Tx()

	items, err := tx.ListWorkItemsByTask(ctx, t.ID)
	if err != nil {
		return err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	for _, wi := range items {
		if wi.IsTerminal() {
			continue
		}
		cb := canceledBy
		wi.State = net.WorkItemCanceled
		wi.CanceledBy = &cb
		if err := tx.UpdateWorkItem(ctx, wi); err != nil {
			return err
		}
		rc.EmitKeyEvent(&audit.KeyEvent{
			Kind: audit.KeyEventCancel, ElementKind: audit.ElementWorkItem,
			ElementID: wi.ID, WorkflowID: wi.WorkflowID, TaskName: t.Name,
			State: string(wi.State), CanceledBy: &cb,
		})
	}

	cb := canceledBy
	t.State = net.TaskCanceled
	if err := tx.UpdateTask(ctx, t); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventCancel, ElementKind: audit.ElementTask,
		ElementID: t.ID, WorkflowID: t.WorkflowID, TaskName: t.Name,
		State: string(t.State), CanceledBy: &cb,
	})
	return nil
}

// OnOwnerTerminated looks up and cancels the region owned by ownerID, if
// any. version.Manager.CompleteTask calls it when a task that owns a
// cancellation region completes; canceling an owner does not call it.
func OnOwnerTerminated(rc *ctxrun.Context, ownerID net.ID) error {
	r, err := rc.Tx().GetCancellationRegionByOwner(rc.GoContext(), ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrEntityNotFound) {
			return nil
		}
		return err
	}
	return Region(rc, r, ownerID)
}
