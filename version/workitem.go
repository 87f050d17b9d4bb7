package version

import (
	"context"

	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/firing"
	"github.com/yawlrun/yawlrun/net"
)

// FireTask loads t by name within workflowID, fires it (consuming its
// input tokens and instantiating its work item, if any), and commits.
func (m *Manager) FireTask(ctx context.Context, workflowID net.ID, taskName string) (*net.WorkItem, error) {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "fireTask", "", "")
	if err != nil {
		return nil, err
	}
	t, err := rc.Tx().GetTaskByName(ctx, workflowID, taskName)
	if err != nil {
		rc.Rollback()
		return nil, err
	}
	if t.Kind == net.TaskKindComposite || t.Kind == net.TaskKindDynamicComposite {
		rc.Rollback()
		return nil, errs.New(errs.CodeConfiguration, nil,
			map[string]any{"task": t.Name, "reason": "composite task fired via InitializeWorkflow, not FireTask"})
	}
	wi, err := firing.Fire(rc, t)
	if err != nil {
		rc.Rollback()
		return nil, err
	}
	if wi != nil {
		if err := firing.OfferWorkItem(rc, wi); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	if err := rc.Commit(); err != nil {
		return nil, err
	}
	return wi, nil
}

// InitializeWorkItem is an alias for FireTask exposed under the name the
// engine API uses for this operation.
func (m *Manager) InitializeWorkItem(ctx context.Context, workflowID net.ID, taskName string) (*net.WorkItem, error) {
	return m.FireTask(ctx, workflowID, taskName)
}

// ClaimWorkItem resolves userID against the registered policy for wi's
// offer and, on success, claims it.
func (m *Manager) ClaimWorkItem(ctx context.Context, workItemID net.ID, userID string) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "claimWorkItem", "", "")
	if err != nil {
		return err
	}
	wi, err := rc.Tx().GetWorkItem(ctx, workItemID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if m.registry == nil {
		rc.Rollback()
		return errs.New(errs.CodeConfiguration, nil, map[string]any{"reason": "no authorization registry configured"})
	}
	if err := authorizeAndClaim(ctx, rc, m, wi, userID); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// StartWorkItem transitions a claimed work item to started.
func (m *Manager) StartWorkItem(ctx context.Context, workItemID net.ID) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "startWorkItem", "", "")
	if err != nil {
		return err
	}
	wi, err := rc.Tx().GetWorkItem(ctx, workItemID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if err := firing.StartWorkItem(rc, wi); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// CompleteWorkItem completes wi with result, then completes its owning
// task and propagates tokens downstream (Manager.CompleteTask also
// cancels the task's cancellation region, if it owns one). After the
// commit it checks the workflow for completion via maybeCompleteWorkflow,
// which, for a child instance, completes the parent composite task
// through subwf.OnChildCompleted.
func (m *Manager) CompleteWorkItem(ctx context.Context, workItemID net.ID, result map[string]any) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "completeWorkItem", "", "")
	if err != nil {
		return err
	}
	wi, err := rc.Tx().GetWorkItem(ctx, workItemID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if err := firing.CompleteWorkItem(rc, wi, result); err != nil {
		rc.Rollback()
		return err
	}
	t, err := rc.Tx().GetTask(ctx, wi.TaskID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if err := m.CompleteTask(rc, t, wi.Payload, derefAggregateID(wi)); err != nil {
		rc.Rollback()
		return err
	}
	if err := rc.Commit(); err != nil {
		return err
	}
	return m.maybeCompleteWorkflow(ctx, t.WorkflowID)
}

// FailWorkItem fails wi; it does not fail the owning task automatically.
func (m *Manager) FailWorkItem(ctx context.Context, workItemID net.ID, reason string) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "failWorkItem", "", "")
	if err != nil {
		return err
	}
	wi, err := rc.Tx().GetWorkItem(ctx, workItemID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if err := firing.FailWorkItem(rc, wi, reason); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// CancelWorkItem cancels wi.
func (m *Manager) CancelWorkItem(ctx context.Context, workItemID net.ID, canceledBy *net.ID) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "cancelWorkItem", "", "")
	if err != nil {
		return err
	}
	wi, err := rc.Tx().GetWorkItem(ctx, workItemID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if err := firing.CancelWorkItem(rc, wi, canceledBy); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// maybeCompleteWorkflow marks workflowID completed once every task in it
// is completed or canceled (a failed or disabled task keeps the workflow
// open), and — if it is a child instance — propagates that
// completion into its parent composite task.
func (m *Manager) maybeCompleteWorkflow(ctx context.Context, workflowID net.ID) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "checkWorkflowCompletion", "", "")
	if err != nil {
		return err
	}
	tx := rc.Tx()
	tasks, err := tx.ListTasksByWorkflow(ctx, workflowID)
	if err != nil {
		rc.Rollback()
		return err
	}
	for _, t := range tasks {
		if t.State != net.TaskComplete && t.State != net.TaskCanceled {
			rc.Rollback()
			return nil
		}
	}
	wf, err := tx.GetWorkflow(ctx, workflowID)
	if err != nil {
		rc.Rollback()
		return err
	}
	if wf.IsTerminal() {
		rc.Rollback()
		return nil
	}
	wf.State = net.WorkflowComplete
	if err := tx.UpdateWorkflow(ctx, wf); err != nil {
		rc.Rollback()
		return err
	}
	if err := rc.Commit(); err != nil {
		return err
	}
	return m.propagateToParent(ctx, wf)
}

func derefAggregateID(wi *net.WorkItem) string {
	if wi.AggregateID == nil {
		return ""
	}
	return *wi.AggregateID
}
