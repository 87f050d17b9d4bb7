package firing

import (
	"time"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

// OfferWorkItem transitions a work item from initialized to offered. An
// automated offer may be claimed by any caller; a human offer requires a
// claim satisfying its RequiredScope/RequiredGroup (enforced by authz).
func OfferWorkItem(rc *ctxrun.Context, wi *net.WorkItem) error {
	if wi.State != net.WorkItemInitialized {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "offered"})
	}
	wi.State = net.WorkItemOffered
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventOffer, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
	})
	return nil
}

// ClaimWorkItem binds wi to claim, transitioning offered to claimed. The
// caller (authz) is responsible for validating that claim satisfies wi's
// Offer before calling this.
func ClaimWorkItem(rc *ctxrun.Context, wi *net.WorkItem, claim net.Claim) error {
	if wi.State != net.WorkItemOffered {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "claimed"})
	}
	if claim.ClaimAt.IsZero() {
		claim.ClaimAt = time.Now()
	}
	wi.Claim = claim
	wi.State = net.WorkItemClaimed
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventClaim, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
	})
	return nil
}

// StartWorkItem transitions a claimed work item to started.
func StartWorkItem(rc *ctxrun.Context, wi *net.WorkItem) error {
	if wi.State != net.WorkItemClaimed {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "started"})
	}
	now := time.Now()
	wi.State = net.WorkItemStarted
	wi.StartedAt = &now
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventStart, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
	})
	return nil
}

// CompleteWorkItem transitions a started work item to completed, merging
// result into its payload, and records the completion. It does not by
// itself complete the owning Task — callers combine this with
// CompleteTask once every work item a task requires has completed.
func CompleteWorkItem(rc *ctxrun.Context, wi *net.WorkItem, result map[string]any) error {
	if wi.State != net.WorkItemStarted {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "completed"})
	}
	now := time.Now()
	if wi.Payload == nil {
		wi.Payload = map[string]any{}
	}
	for k, v := range result {
		wi.Payload[k] = v
	}
	wi.State = net.WorkItemComplete
	wi.CompletedAt = &now
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventComplete, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
	})
	return nil
}

// FailWorkItem transitions a started work item to failed.
func FailWorkItem(rc *ctxrun.Context, wi *net.WorkItem, reason string) error {
	if wi.State != net.WorkItemStarted {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "failed"})
	}
	wi.State = net.WorkItemFailed
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventFail, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
		Attributes: map[string]any{"reason": reason},
	})
	return nil
}

// CancelWorkItem transitions a non-terminal work item to canceled,
// recording the cancelling element (typically a CancellationRegion
// owner). Idempotent: canceling an already-canceled item is a no-op.
func CancelWorkItem(rc *ctxrun.Context, wi *net.WorkItem, canceledBy *net.ID) error {
	if wi.State == net.WorkItemCanceled {
		return nil
	}
	if wi.IsTerminal() {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"workItem": wi.ID.String(), "from": string(wi.State), "to": "canceled"})
	}
	wi.State = net.WorkItemCanceled
	wi.CanceledBy = canceledBy
	if err := rc.Tx().UpdateWorkItem(rc.GoContext(), wi); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventCancel, ElementKind: audit.ElementWorkItem,
		ElementID: wi.ID, WorkflowID: wi.WorkflowID, State: string(wi.State),
		CanceledBy: canceledBy,
	})
	return nil
}
